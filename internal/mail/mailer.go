// Package mail delivers price alert email over SMTP.
package mail

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewMailer(host, port, username, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     username,
	}
}

// Enabled reports whether SMTP credentials were configured. An
// unconfigured mailer should not be wired into the tracker at all.
func (m *Mailer) Enabled() bool { return m.host != "" && m.username != "" && m.password != "" }

// SendPriceAlert notifies the owner of a tracked product that its
// price dropped to a new low.
func (m *Mailer) SendPriceAlert(to, productName string, oldPrice, newPrice int, productURL string) error {
	savings := oldPrice - newPrice

	e := email.NewEmail()
	e.From = fmt.Sprintf("PriceWatch <%s>", m.from)
	e.To = []string{to}
	e.Subject = fmt.Sprintf("가격 하락 알림: %s", productName)
	e.HTML = []byte(fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2 style="color:#d9480f">최저가 갱신!</h2>
  <p><strong>%s</strong>의 가격이 떨어졌어요.</p>
  <table style="border-collapse:collapse">
    <tr><td style="padding:4px 12px 4px 0">이전 가격</td><td><s>%s원</s></td></tr>
    <tr><td style="padding:4px 12px 4px 0">현재 가격</td><td><strong style="color:#d9480f">%s원</strong></td></tr>
    <tr><td style="padding:4px 12px 4px 0">절약 금액</td><td>%s원</td></tr>
  </table>
  <p style="margin-top:16px"><a href="%s">상품 보러 가기</a></p>
</div>`,
		productName, formatKRW(oldPrice), formatKRW(newPrice), formatKRW(savings), productURL))

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send alert to %s: %w", to, err)
	}
	return nil
}

// formatKRW inserts thousands separators, 1234567 -> "1,234,567".
func formatKRW(n int) string {
	if n < 0 {
		return "-" + formatKRW(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
