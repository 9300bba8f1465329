// Command adminctl mints a short-lived admin token and queries the admin
// views of a running smartquote API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

const usage = `Usage:
  adminctl leads [source] [limit]
  adminctl lead <id>
  adminctl counts
  adminctl events`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		fmt.Println("Error: ADMIN_JWT_SECRET environment variable not set")
		os.Exit(1)
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	path, err := requestPath(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		fmt.Println(usage)
		os.Exit(1)
	}

	token, err := signAdminToken(secret, time.Now(), time.Hour)
	if err != nil {
		fmt.Printf("Error signing token: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, err := fetch(ctx, &http.Client{}, strings.TrimRight(apiURL, "/")+path, token)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(body))
}

// signAdminToken returns an HS256 token accepted by the admin middleware.
func signAdminToken(secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func requestPath(args []string) (string, error) {
	switch args[0] {
	case "leads":
		q := url.Values{}
		if len(args) > 1 && args[1] != "" {
			q.Set("source", args[1])
		}
		if len(args) > 2 {
			q.Set("limit", args[2])
		}
		if len(q) == 0 {
			return "/admin/leads", nil
		}
		return "/admin/leads?" + q.Encode(), nil
	case "lead":
		if len(args) < 2 {
			return "", fmt.Errorf("lead requires an id")
		}
		return "/admin/leads/" + url.PathEscape(args[1]), nil
	case "counts":
		return "/admin/analytics/counts", nil
	case "events":
		return "/api/analytics", nil
	default:
		return "", fmt.Errorf("unknown command %q", args[0])
	}
}

func fetch(ctx context.Context, client *http.Client, target, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func prettyJSON(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(out)
}
