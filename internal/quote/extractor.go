package quote

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	UnknownClient = "Unknown Client"
	PhoneMissing  = "Not detected"
	TimelineTBD   = "TBD"
)

var phonePattern = regexp.MustCompile(`\d{3}[-.\s]??\d{3}[-.\s]??\d{4}|\(\d{3}\)\s*\d{3}[-.\s]??\d{4}`)

var timelineKeywords = []string{"immediately", "month", "week", "year", "asap", "spring", "summer", "fall", "winter"}

// LeadRecord is the lead derived from a conversation that ended in a quote.
type LeadRecord struct {
	ClientName  string
	ClientPhone string
	Timeline    string
	Transcript  string
	Model       string
	Source      string
}

// ExtractLead derives a lead from msgs. Missing fields get placeholder
// values, so extraction always succeeds. msgs is read, never modified.
func ExtractLead(msgs []ChatMessage) LeadRecord {
	rec := LeadRecord{
		ClientName:  UnknownClient,
		ClientPhone: PhoneMissing,
		Timeline:    TimelineTBD,
		Transcript:  RenderTranscript(msgs),
	}

	// The first message is the bot greeting; the reply to it is the name.
	if len(msgs) > 1 && msgs[1].Role == RoleUser {
		rec.ClientName = msgs[1].Content
	}

	contents := make([]string, 0, len(msgs))
	for _, m := range msgs {
		contents = append(contents, m.Content)
	}
	if phone := phonePattern.FindString(strings.Join(contents, " ")); phone != "" {
		rec.ClientPhone = phone
	}

	for _, m := range msgs {
		if m.Role != RoleUser {
			continue
		}
		if mentionsTimeline(m.Content) {
			rec.Timeline = m.Content
			break
		}
	}
	return rec
}

func mentionsTimeline(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range timelineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

const briefRule = "========================================"

// Summary renders the project brief block sent at the top of a lead mail.
func (r LeadRecord) Summary() string {
	var b strings.Builder
	b.WriteString(briefRule + "\n")
	b.WriteString("🚀 NEW LEAD: PROJECT BRIEF\n")
	b.WriteString(briefRule + "\n")
	fmt.Fprintf(&b, "👤 NAME:       %s\n", r.ClientName)
	fmt.Fprintf(&b, "📱 PHONE:      %s\n", r.ClientPhone)
	fmt.Fprintf(&b, "📅 START DATE: %s\n", r.Timeline)
	return b.String()
}
