package notification

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeSMTP accepts one session and records the DATA payload
type fakeSMTP struct {
	ln       net.Listener
	mu       sync.Mutex
	commands []string
	data     string
	done     chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { _ = ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	reply("220 localhost ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		f.mu.Lock()
		f.commands = append(f.commands, line)
		f.mu.Unlock()

		switch cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); cmd {
		case "EHLO", "HELO":
			reply("250 localhost")
		case "MAIL", "RCPT":
			reply("250 OK")
		case "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			f.mu.Lock()
			f.data = sb.String()
			f.mu.Unlock()
			reply("250 OK")
		case "QUIT":
			reply("221 Bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	srv := startFakeSMTP(t)
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: srv.port(), From: "stocker@example.com"})
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.Send(ctx, inventory.Message{
		To:      "ops@example.com",
		Subject: "Low stock alert: Beans",
		Body:    "Current quantity: 4\n",
	})
	require.NoError(t, err)
	<-srv.done

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Contains(t, srv.commands, "MAIL FROM:<stocker@example.com>")
	assert.Contains(t, srv.commands, "RCPT TO:<ops@example.com>")
	assert.Contains(t, srv.data, "Subject: Low stock alert: Beans\r\n")
	assert.Contains(t, srv.data, "Current quantity: 4\r\n")
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "a@b.c"})
	assert.Error(t, m.Send(context.Background(), inventory.Message{}))

	err := m.Send(context.Background(), inventory.Message{To: "ops@example.com"})
	assert.Error(t, err)

	noSender := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1"})
	assert.Error(t, noSender.Send(context.Background(), inventory.Message{To: "ops@example.com"}))
}

func TestSMTPMailer_RenderStripsHeaderInjection(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{From: "a@b.c"})
	out := string(m.render(inventory.Message{To: "x@y.z", Subject: "hi\r\nBcc: evil@x", Body: "b"}))
	assert.Contains(t, out, "Subject: hi  Bcc: evil@x\r\n")
	assert.NotContains(t, out, "\r\nBcc:")
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), inventory.Message{To: "ops@example.com", Subject: "s", Body: "b"}))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "email", entry.Message)
	assert.Equal(t, "ops@example.com", entry.ContextMap()["to"])
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, &LogMailer{}, NewMailer(config.NotificationConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTPMailer{}, NewMailer(config.NotificationConfig{SMTPHost: "mail", From: "a@b.c"}, zap.NewNop()))
}
