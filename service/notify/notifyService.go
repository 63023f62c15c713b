// Package notify turns workflow transitions into rendered emails. It is
// the consumer side of the mail queue: the lending service only ever
// enqueues (ref, template) pairs.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	orderrepo "github.com/sumaro2101/EasyLibrary/repository/order"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template references carried inside mail tasks.
const (
	TemplateOrderOpen       = "order_open"
	TemplateOrderClose      = "order_close"
	TemplateExtensionOpen   = "extension_open"
	TemplateExtensionAccept = "extension_accept"
	TemplateExtensionCancel = "extension_cancel"
	TemplateOverdue         = "overdue"
)

// MailTask is the queue payload for a single one-shot notification.
type MailTask struct {
	Ref      string `json:"ref"`
	Template string `json:"template"`
}

type ErrCode string

const (
	ErrRefNotFound      ErrCode = "REF_NOT_FOUND"
	ErrTemplateNotFound ErrCode = "TEMPLATE_NOT_FOUND"
	ErrRecipientMissing ErrCode = "RECIPIENT_MISSING"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// MailInfo = repository shape
type MailInfo = orderrepo.MailInfo

type Repo interface {
	MailOrderInfo(ctx context.Context, orderID int64) (*MailInfo, error)
	MailExtensionInfo(ctx context.Context, extensionID int64) (*MailInfo, error)
}

// Mailer dispatches a rendered message.
type Mailer interface {
	Send(to, subject, body string) error
}

type Service interface {
	// SendMail resolves the ref, renders the template and dispatches
	// the email to the relevant party.
	SendMail(ctx context.Context, ref, templateName string) error
}

// Config is the notify-specific slice of the app config.
type Config struct {
	SupportURL string
	Library    string
	// StaffMail receives overdue reminders instead of the patron.
	StaffMail string
}

type service struct {
	r   Repo
	m   Mailer
	cfg Config
	t   *template.Template
}

func New(r Repo, m Mailer, cfg Config) (Service, error) {
	if cfg.SupportURL == "" {
		cfg.SupportURL = "http://easyLibrary/support/ticket/"
	}
	if cfg.Library == "" {
		cfg.Library = "easyLibrary"
	}
	t, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &service{r: r, m: m, cfg: cfg, t: t}, nil
}

// mailContext is the data every template renders with.
type mailContext struct {
	PkOrder      int64
	PkExtension  *int64
	ResponseText *string
	BookName     string
	Age          string
	CountDays    int
	DayToReturn  string
	OverdueDays  int
	Support      string
	Library      string
}

func (s *service) SendMail(ctx context.Context, ref, templateName string) error {
	kind, id, err := parseRef(ref)
	if err != nil {
		return err
	}

	var info *MailInfo
	switch kind {
	case refOrder:
		info, err = s.r.MailOrderInfo(ctx, id)
	case refExtension:
		info, err = s.r.MailExtensionInfo(ctx, id)
	}
	if err != nil {
		return err
	}
	if info == nil {
		return makeErr(ErrRefNotFound)
	}

	mc := s.buildContext(info, time.Now())

	to := s.cfg.StaffMail
	if templateName != TemplateOverdue {
		if info.TenantEmail == nil || *info.TenantEmail == "" {
			return makeErr(ErrRecipientMissing)
		}
		to = *info.TenantEmail
	}

	subject, err := s.render("mail_subject", mc)
	if err != nil {
		return err
	}
	body, err := s.render(templateName, mc)
	if err != nil {
		return err
	}
	return s.m.Send(to, strings.TrimSpace(subject), body)
}

func (s *service) buildContext(info *MailInfo, now time.Time) mailContext {
	overdue := 0
	if d := int(now.Sub(info.TimeReturn).Hours() / 24); d >= 0 {
		overdue = d
	}
	return mailContext{
		PkOrder:      info.OrderID,
		PkExtension:  info.ExtensionID,
		ResponseText: info.ResponseText,
		BookName:     info.BookName,
		Age:          fmt.Sprintf("%d+", info.AgeRestriction),
		CountDays:    info.AgeRestriction.LoanDays(),
		DayToReturn:  info.TimeReturn.Format("2006-01-02"),
		OverdueDays:  overdue,
		Support:      s.cfg.SupportURL,
		Library:      s.cfg.Library,
	}
}

func (s *service) render(name string, mc mailContext) (string, error) {
	t := s.t.Lookup(name + ".tmpl")
	if t == nil {
		return "", makeErr(ErrTemplateNotFound)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, mc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
