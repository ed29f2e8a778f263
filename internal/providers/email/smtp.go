package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"

	jwemail "github.com/jordan-wright/email"
)

type Config struct {
	Host     string
	Port     int
	UseTLS   bool
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg  Config
	send func(e *jwemail.Email, addr string, auth smtp.Auth) error
}

func NewSMTP(cfg Config) *SMTPProvider {
	p := &SMTPProvider{cfg: cfg}
	if cfg.UseTLS {
		tlsCfg := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
		p.send = func(e *jwemail.Email, addr string, auth smtp.Auth) error {
			return e.SendWithStartTLS(addr, auth, tlsCfg)
		}
	} else {
		p.send = func(e *jwemail.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		}
	}
	return p
}

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("email: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := jwemail.NewEmail()
	e.From = msg.From
	if e.From == "" {
		e.From = p.cfg.From
	}
	e.To = msg.To
	e.Bcc = msg.Bcc
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)

	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}
	addr := p.cfg.Host + ":" + strconv.Itoa(p.cfg.Port)
	if err := p.send(e, addr, auth); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}
