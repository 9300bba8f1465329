package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes each delivered lead as a JSON object under
// <prefix>leads/YYYY/MM/DD/<id>.json.
type S3Archive struct {
	client s3PutAPI
	bucket string
	prefix string
}

// NewS3Archive returns nil when no bucket is configured.
func NewS3Archive(client s3PutAPI, bucket, prefix string) *S3Archive {
	if client == nil || strings.TrimSpace(bucket) == "" {
		return nil
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key used for lead.
func (a *S3Archive) Key(lead *Lead) string {
	return fmt.Sprintf("%sleads/%s/%s.json", a.prefix, lead.CreatedAt.UTC().Format("2006/01/02"), lead.ID)
}

// Archive uploads the lead document.
func (a *S3Archive) Archive(ctx context.Context, lead *Lead) error {
	prepare(lead)
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("leads: marshal archive object: %w", err)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(lead)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("leads: s3 archive failed: %w", err)
	}
	return nil
}

var (
	_ Archiver   = (*S3Archive)(nil)
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*InMemoryRepository)(nil)
)
