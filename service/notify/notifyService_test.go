package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sumaro2101/EasyLibrary/model"
)

type mockMailRepo struct {
	orderInfoFn     func(ctx context.Context, orderID int64) (*MailInfo, error)
	extensionInfoFn func(ctx context.Context, extensionID int64) (*MailInfo, error)
}

var _ Repo = (*mockMailRepo)(nil)

func (m *mockMailRepo) MailOrderInfo(ctx context.Context, orderID int64) (*MailInfo, error) {
	return m.orderInfoFn(ctx, orderID)
}
func (m *mockMailRepo) MailExtensionInfo(ctx context.Context, extensionID int64) (*MailInfo, error) {
	return m.extensionInfoFn(ctx, extensionID)
}

type sentMail struct {
	to, subject, body string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func orderInfo(email string, timeReturn time.Time) *MailInfo {
	return &MailInfo{
		OrderID:        7,
		BookName:       "Dune",
		AgeRestriction: model.Age12,
		TimeReturn:     timeReturn,
		TenantEmail:    &email,
	}
}

func TestRefs(t *testing.T) {
	require.Equal(t, "OR_7", OrderRef(7))
	require.Equal(t, "EX_12", ExtensionRef(12))

	kind, id, err := parseRef("OR_7")
	require.NoError(t, err)
	require.Equal(t, refOrder, kind)
	require.Equal(t, int64(7), id)

	for _, bad := range []string{"", "OR_", "XX_7", "OR_0", "OR_abc", "7"} {
		_, _, err := parseRef(bad)
		require.Error(t, err, bad)
	}
}

func TestSendMail_OrderOpen(t *testing.T) {
	r := &mockMailRepo{
		orderInfoFn: func(ctx context.Context, orderID int64) (*MailInfo, error) {
			require.Equal(t, int64(7), orderID)
			return orderInfo("patron@example.com", time.Now().AddDate(0, 0, 14)), nil
		},
	}
	mailer := &mockMailer{}
	svc, err := New(r, mailer, Config{StaffMail: "staff@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.SendMail(context.Background(), "OR_7", TemplateOrderOpen))
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	require.Equal(t, "patron@example.com", mail.to)
	require.Contains(t, mail.subject, "#7")
	require.Contains(t, mail.subject, "Dune")
	require.Contains(t, mail.body, "12+")
	require.Contains(t, mail.body, "14 days")
}

func TestSendMail_OverdueGoesToStaff(t *testing.T) {
	r := &mockMailRepo{
		orderInfoFn: func(ctx context.Context, orderID int64) (*MailInfo, error) {
			return orderInfo("patron@example.com", time.Now().AddDate(0, 0, -3)), nil
		},
	}
	mailer := &mockMailer{}
	svc, err := New(r, mailer, Config{StaffMail: "staff@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.SendMail(context.Background(), "OR_7", TemplateOverdue))
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "staff@example.com", mailer.sent[0].to)
	require.Contains(t, mailer.sent[0].body, "3 days overdue")
}

func TestSendMail_RefNotFound(t *testing.T) {
	r := &mockMailRepo{
		orderInfoFn: func(ctx context.Context, orderID int64) (*MailInfo, error) {
			return nil, nil
		},
	}
	svc, err := New(r, &mockMailer{}, Config{})
	require.NoError(t, err)

	err = svc.SendMail(context.Background(), "OR_404", TemplateOrderOpen)
	require.Equal(t, ErrRefNotFound, Code(err))
}

func TestSendMail_RecipientMissing(t *testing.T) {
	r := &mockMailRepo{
		orderInfoFn: func(ctx context.Context, orderID int64) (*MailInfo, error) {
			info := orderInfo("", time.Now())
			info.TenantEmail = nil
			return info, nil
		},
	}
	svc, err := New(r, &mockMailer{}, Config{})
	require.NoError(t, err)

	err = svc.SendMail(context.Background(), "OR_7", TemplateOrderOpen)
	require.Equal(t, ErrRecipientMissing, Code(err))
}

func TestSendMail_TemplateNotFound(t *testing.T) {
	r := &mockMailRepo{
		orderInfoFn: func(ctx context.Context, orderID int64) (*MailInfo, error) {
			return orderInfo("patron@example.com", time.Now()), nil
		},
	}
	svc, err := New(r, &mockMailer{}, Config{})
	require.NoError(t, err)

	err = svc.SendMail(context.Background(), "OR_7", "no_such_template")
	require.Equal(t, ErrTemplateNotFound, Code(err))
}

func TestSendMail_ExtensionAcceptCarriesNote(t *testing.T) {
	note := "enjoy the extra weeks"
	extID := int64(12)
	r := &mockMailRepo{
		extensionInfoFn: func(ctx context.Context, extensionID int64) (*MailInfo, error) {
			info := orderInfo("patron@example.com", time.Now().AddDate(0, 0, 14))
			info.ExtensionID = &extID
			info.ResponseText = &note
			return info, nil
		},
	}
	mailer := &mockMailer{}
	svc, err := New(r, mailer, Config{})
	require.NoError(t, err)

	require.NoError(t, svc.SendMail(context.Background(), "EX_12", TemplateExtensionAccept))
	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0].body, "#12")
	require.Contains(t, mailer.sent[0].body, note)
}

func TestBuildContext(t *testing.T) {
	svc, err := New(&mockMailRepo{}, &mockMailer{}, Config{})
	require.NoError(t, err)
	s := svc.(*service)

	timeReturn := time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)
	info := orderInfo("patron@example.com", timeReturn)
	info.AgeRestriction = model.Age18

	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)
	mc := s.buildContext(info, now)
	require.Equal(t, "18+", mc.Age)
	require.Equal(t, 30, mc.CountDays)
	require.Equal(t, "2025-03-24", mc.DayToReturn)
	require.Equal(t, 3, mc.OverdueDays)

	// Not yet due.
	mc = s.buildContext(info, timeReturn.AddDate(0, 0, -5))
	require.Equal(t, 0, mc.OverdueDays)
}

func TestRenderAllTemplates(t *testing.T) {
	svc, err := New(&mockMailRepo{}, &mockMailer{}, Config{})
	require.NoError(t, err)
	s := svc.(*service)

	extID := int64(12)
	mc := s.buildContext(orderInfo("patron@example.com", time.Now()), time.Now())
	mc.PkExtension = &extID

	for _, name := range []string{
		"mail_subject",
		TemplateOrderOpen,
		TemplateOrderClose,
		TemplateExtensionOpen,
		TemplateExtensionAccept,
		TemplateExtensionCancel,
		TemplateOverdue,
	} {
		out, err := s.render(name, mc)
		require.NoError(t, err, name)
		require.False(t, strings.Contains(out, "<no value>"), name)
	}
}
