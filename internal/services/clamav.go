package services

import (
	"bytes"
	"context"
	"fmt"
	"net"

	clamd "github.com/dutchcoders/go-clamd"
)

// ClamAVScanner talks to a clamd daemon over TCP. It satisfies VirusScanner.
type ClamAVScanner struct {
	client *clamd.Clamd
}

func NewClamAVScanner(host, port string) *ClamAVScanner {
	address := fmt.Sprintf("tcp://%s", net.JoinHostPort(host, port))
	return &ClamAVScanner{client: clamd.NewClamd(address)}
}

// Scan streams the buffer to clamd. Returned signatures are empty for a
// clean file; an error means the daemon could not be reached or the scan
// itself broke, which the security gate treats per its failure policy.
func (s *ClamAVScanner) Scan(ctx context.Context, buf []byte) ([]string, error) {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(bytes.NewReader(buf), abort)
	if err != nil {
		return nil, fmt.Errorf("clamd scan stream: %w", err)
	}

	var signatures []string
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result, ok := <-results:
			if !ok {
				return signatures, nil
			}
			if result == nil {
				continue
			}
			switch result.Status {
			case clamd.RES_FOUND:
				signatures = append(signatures, result.Description)
			case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
				return nil, fmt.Errorf("clamd scan error: %s", result.Description)
			}
		}
	}
}
