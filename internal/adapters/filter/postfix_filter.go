package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/core"
	"github.com/mikey/phishscope/internal/utils"
	"github.com/mikey/phishscope/internal/whitelist"
)

// PostfixFilter implements a Postfix content filter: it receives mail over
// SMTP, runs the phishing analysis, stamps verdict headers, and re-injects
// the message into Postfix.
type PostfixFilter struct {
	service          *core.AnalyzerService
	logger           *zap.Logger
	listenAddr       string
	server           *smtp.Server
	blockPhishing    bool
	verdictHeader    string
	confidenceHeader string
	indicatorsHeader string
	postfixAddr      string
	postfixPort      int
	postfixEnabled   bool
	subjectPrefix    string
	modifySubject    bool
	whitelist        *whitelist.Checker
	textProcessor    *utils.TextProcessor
	maxBodySize      int
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.AnalyzerService,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	verdictHeader string,
	confidenceHeader string,
	indicatorsHeader string,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
	subjectPrefix string,
	modifySubject bool,
	wl *whitelist.Checker,
	textProcessor *utils.TextProcessor,
	maxBodySize int,
) *PostfixFilter {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &PostfixFilter{
		service:          service,
		logger:           logger,
		listenAddr:       listenAddr,
		blockPhishing:    blockPhishing,
		verdictHeader:    verdictHeader,
		confidenceHeader: confidenceHeader,
		indicatorsHeader: indicatorsHeader,
		postfixAddr:      postfixAddr,
		postfixPort:      postfixPort,
		postfixEnabled:   postfixEnabled,
		subjectPrefix:    subjectPrefix,
		modifySubject:    modifySubject,
		whitelist:        wl,
		textProcessor:    textProcessor,
		maxBodySize:      maxBodySize,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email directly. This is mainly used for testing
// or direct API calls.
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.UnifiedResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// sendToPostfix re-injects the processed email into Postfix using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := fmt.Sprintf("%s:%d", f.postfixAddr, f.postfixPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Logout handles session termination
func (s *smtpSession) Logout() error {
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	subject := msg.Header.Get("Subject")

	email := &core.Email{
		From:    s.sender,
		To:      s.recipients,
		Subject: subject,
		Body:    s.filter.textProcessor.ProcessText(textContent, s.filter.maxBodySize),
		URLs:    utils.ExtractURLs(subject + "\n\n" + textContent),
		Headers: map[string][]string(msg.Header),
	}

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	// Whitelisted senders pass through untouched.
	if s.filter.whitelist != nil && s.filter.whitelist.IsWhitelisted(email.From) {
		s.filter.logger.Info("Skipping analysis for whitelisted domain",
			zap.String("sender", email.From))
		return s.forward(rawData, nil, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, analysisErr := s.filter.service.AnalyzeEmail(ctx, email)
	if result == nil && analysisErr != nil {
		s.filter.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))
		// Never guess a verdict: forward unmodified with an error header so
		// downstream policy can quarantine on missing analysis if it wants.
		return s.forward(rawData, nil, analysisErr)
	}

	if analysisErr != nil {
		s.filter.logger.Warn("URL analysis failed, using text-only verdict",
			zap.Error(analysisErr),
			zap.String("sender", email.From))
	}

	if result.Verdict == core.VerdictPhishing && s.filter.blockPhishing {
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Float64("confidence", result.Confidence),
			zap.Strings("indicators", result.PhishingIndicators))
		return fmt.Errorf("550 Rejected as phishing (confidence: %.2f)", result.Confidence)
	}

	return s.forward(rawData, result, analysisErr)
}

// forward stamps verdict headers onto the raw message and hands it back to
// Postfix (or just logs when re-injection is disabled).
func (s *smtpSession) forward(rawData []byte, result *core.UnifiedResult, analysisErr error) error {
	var modified bytes.Buffer

	if result != nil {
		fmt.Fprintf(&modified, "%s: %s\r\n", s.filter.verdictHeader, result.Verdict)
		fmt.Fprintf(&modified, "%s: %.2f\r\n", s.filter.confidenceHeader, result.Confidence)
		if len(result.PhishingIndicators) > 0 {
			fmt.Fprintf(&modified, "%s: %s\r\n",
				s.filter.indicatorsHeader, strings.Join(result.PhishingIndicators, ", "))
		}
	}
	if analysisErr != nil {
		fmt.Fprintf(&modified, "X-Phishing-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	data := rawData
	if result != nil && result.Verdict == core.VerdictPhishing && s.filter.modifySubject {
		data = prefixSubject(rawData, s.filter.subjectPrefix)
	}
	modified.Write(data)

	if !s.filter.postfixEnabled {
		s.filter.logger.Debug("Postfix re-injection disabled, dropping message after analysis")
		return nil
	}

	if err := s.filter.sendToPostfix(s.sender, s.recipients, modified.Bytes()); err != nil {
		s.filter.logger.Error("Failed to re-inject email into Postfix", zap.Error(err))
		return err
	}

	return nil
}

// prefixSubject rewrites the Subject header line with the configured prefix.
func prefixSubject(rawData []byte, prefix string) []byte {
	lines := bytes.SplitN(rawData, []byte("\r\n\r\n"), 2)
	headers := bytes.Split(lines[0], []byte("\r\n"))

	var out bytes.Buffer
	for _, h := range headers {
		if bytes.HasPrefix(bytes.ToLower(h), []byte("subject:")) {
			value := strings.TrimSpace(string(h[len("subject:"):]))
			fmt.Fprintf(&out, "Subject: %s%s\r\n", prefix, value)
			continue
		}
		out.Write(h)
		out.WriteString("\r\n")
	}
	if len(lines) == 2 {
		out.WriteString("\r\n")
		out.Write(lines[1])
	}
	return out.Bytes()
}
