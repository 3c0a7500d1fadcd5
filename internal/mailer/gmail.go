package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sender dispatches HTML email with an optional binary attachment through
// the Gmail REST send endpoint. The interactive authorization exchange
// that produces the token happens out of band; Sender only consumes it.
type Sender struct {
	from        string
	accessToken string
	baseURL     string
	client      *http.Client
}

func NewSender(from, accessToken string) *Sender {
	return &Sender{
		from:        from,
		accessToken: accessToken,
		baseURL:     "https://gmail.googleapis.com",
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type sendRequest struct {
	Raw string `json:"raw"`
}

// Send assembles the MIME message and submits it. A nonexistent
// attachment path means the message simply carries no attachment.
func (s *Sender) Send(ctx context.Context, to []string, subject, htmlBody, attachmentPath string) error {
	msg, err := BuildMessage(s.from, to, subject, htmlBody, attachmentPath)
	if err != nil {
		return err
	}

	raw := base64.URLEncoding.EncodeToString(msg)
	jsonData, err := json.Marshal(sendRequest{Raw: raw})
	if err != nil {
		return fmt.Errorf("mailer: failed to marshal send request: %w", err)
	}

	reqURL := s.baseURL + "/gmail/v1/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("mailer: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailer: send returned status %d: %s", resp.StatusCode, body)
	}

	return nil
}

// BuildMessage produces the raw multipart MIME message: an HTML body part
// and, when attachmentPath names an existing file, a base64-encoded
// application/octet-stream part with a filename disposition header.
func BuildMessage(from string, to []string, subject, htmlBody, attachmentPath string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", `text/html; charset="UTF-8"`)
	part, err := w.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to create body part: %w", err)
	}
	if _, err := part.Write([]byte(htmlBody)); err != nil {
		return nil, fmt.Errorf("mailer: failed to write body part: %w", err)
	}

	if attachmentPath != "" {
		if data, err := os.ReadFile(attachmentPath); err == nil {
			attHeader := textproto.MIMEHeader{}
			attHeader.Set("Content-Type", "application/octet-stream")
			attHeader.Set("Content-Transfer-Encoding", "base64")
			attHeader.Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", filepath.Base(attachmentPath)))

			att, err := w.CreatePart(attHeader)
			if err != nil {
				return nil, fmt.Errorf("mailer: failed to create attachment part: %w", err)
			}
			if err := writeBase64(att, data); err != nil {
				return nil, fmt.Errorf("mailer: failed to write attachment: %w", err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("mailer: failed to finalize message: %w", err)
	}

	return buf.Bytes(), nil
}

// writeBase64 encodes data in 76-column base64 lines as MIME expects.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// FormatHTMLBody wraps the memo text in the newsletter scaffold, turning
// blank lines into paragraph breaks.
func FormatHTMLBody(memoText string) string {
	formatted := strings.ReplaceAll(memoText, "\n\n", "<br><br>")
	formatted = strings.ReplaceAll(formatted, "\n", "<br>")

	var sb strings.Builder
	sb.WriteString("<html><body><h1>Series A Funding Newsletter</h1>")
	sb.WriteString(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">`)
	sb.WriteString(formatted)
	sb.WriteString("</div>")
	sb.WriteString("<p>Listen to the audio summary attached to this email.</p>")
	sb.WriteString("<p>Best regards,<br/>AI Newsletter Bot</p></body></html>")
	return sb.String()
}
