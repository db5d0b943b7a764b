package smtp

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal in-process SMTP submission server.
type fakeServer struct {
	port      int
	offerTLS  bool
	authReply string
	serverTLS *tls.Config
	roots     *x509.CertPool

	mu    sync.Mutex
	cmds  []string
	data  string
	conns []net.Conn
}

// startFakeServer listens on 127.0.0.1 and serves every connection until the
// test ends. The certificate is valid for 127.0.0.1.
func startFakeServer(t *testing.T, offerTLS bool, authReply string) *fakeServer {
	t.Helper()

	certSrv := httptest.NewUnstartedServer(http.NotFoundHandler())
	certSrv.StartTLS()
	roots := x509.NewCertPool()
	roots.AddCert(certSrv.Certificate())
	serverTLS := &tls.Config{Certificates: certSrv.TLS.Certificates}
	certSrv.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{
		port:      ln.Addr().(*net.TCPAddr).Port,
		offerTLS:  offerTLS,
		authReply: authReply,
		serverTLS: serverTLS,
		roots:     roots,
	}
	t.Cleanup(func() {
		_ = ln.Close()
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, c := range s.conns {
			_ = c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.conns = append(s.conns, conn)
			s.mu.Unlock()
			go s.serve(conn)
		}
	}()
	return s
}

// clientTLS trusts the server's certificate.
func (s *fakeServer) clientTLS() *tls.Config {
	return &tls.Config{RootCAs: s.roots, ServerName: "127.0.0.1", MinVersion: tls.VersionTLS12}
}

// commands returns the SMTP verbs received so far, in order.
func (s *fakeServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cmds...)
}

func (s *fakeServer) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *fakeServer) record(verb string) {
	s.mu.Lock()
	s.cmds = append(s.cmds, verb)
	s.mu.Unlock()
}

func (s *fakeServer) serve(conn net.Conn) {
	tp := textproto.NewConn(conn)
	secure := false
	if tp.PrintfLine("220 127.0.0.1 ESMTP fake") != nil {
		return
	}

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb, _, _ := strings.Cut(line, " ")
		verb = strings.ToUpper(verb)
		s.record(verb)

		switch verb {
		case "EHLO":
			lines := []string{"250-127.0.0.1"}
			if s.offerTLS && !secure {
				lines = append(lines, "250-STARTTLS")
			}
			if secure {
				lines = append(lines, "250-AUTH PLAIN LOGIN")
			}
			lines = append(lines, "250 8BITMIME")
			for _, l := range lines {
				if tp.PrintfLine("%s", l) != nil {
					return
				}
			}
		case "STARTTLS":
			if tp.PrintfLine("220 ready to start TLS") != nil {
				return
			}
			tlsConn := tls.Server(conn, s.serverTLS)
			if tlsConn.Handshake() != nil {
				return
			}
			conn = tlsConn
			tp = textproto.NewConn(conn)
			secure = true
		case "AUTH":
			_ = tp.PrintfLine("%s", s.authReply)
		case "DATA":
			_ = tp.PrintfLine("354 end with <CR><LF>.<CR><LF>")
			body, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.data = string(body)
			s.mu.Unlock()
			_ = tp.PrintfLine("250 queued")
		case "*":
			_ = tp.PrintfLine("501 authentication aborted")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("250 ok")
		}
	}
}
