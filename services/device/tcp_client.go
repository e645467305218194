package device

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	apperrors "attend/errors"
)

// TimeLayout is the wall-clock form terminals use in log lines.
const TimeLayout = "2006-01-02 15:04:05"

// TCPClient speaks the terminal's line-oriented pull protocol: one
// command per line, multi-line replies terminated by "OK". Every
// exchange runs under the connection deadline so a wedged device cannot
// stall a poll past its timeout.
type TCPClient struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
}

func NewTCPClient(addr string, timeout time.Duration) *TCPClient {
	return &TCPClient{
		addr:    addr,
		timeout: timeout,
	}
}

func (c *TCPClient) Connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDeviceUnreachable,
			fmt.Sprintf("dial %s", c.addr), err)
	}
	c.conn = conn
	return nil
}

func (c *TCPClient) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// FetchLog requests the full attendance log. Each reply line is
// tab-separated: sn, user id, timestamp, verify type, state.
func (c *TCPClient) FetchLog(ctx context.Context) ([]LogEntry, error) {
	if c.conn == nil {
		return nil, apperrors.ErrDeviceUnreachable
	}
	if err := c.send(ctx, "ATTLOG"); err != nil {
		return nil, err
	}

	var entries []LogEntry
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "OK" {
			return entries, nil
		}
		if line == "" {
			continue
		}
		entry, err := parseLogLine(line, c.conn.RemoteAddr().String())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol, "reading log", err)
	}
	return nil, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol, "log reply not terminated", nil)
}

// SetTime pushes the server clock to the device. Terminals drift, and a
// drifted clock skews every leverage comparison downstream.
func (c *TCPClient) SetTime(ctx context.Context, t time.Time) error {
	if c.conn == nil {
		return apperrors.ErrDeviceUnreachable
	}
	if err := c.send(ctx, "SETTIME\t"+t.Format(TimeLayout)); err != nil {
		return err
	}
	reply, err := bufio.NewReader(c.conn).ReadString('\n')
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol, "reading settime reply", err)
	}
	if strings.TrimSpace(reply) != "OK" {
		return apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol,
			fmt.Sprintf("unexpected settime reply %q", strings.TrimSpace(reply)), nil)
	}
	return nil
}

func (c *TCPClient) send(ctx context.Context, cmd string) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.conn, "%s\n", cmd); err != nil {
		return apperrors.NewAppError(apperrors.ErrCodeDeviceUnreachable, "write command", err)
	}
	return nil
}

func parseLogLine(line, ip string) (LogEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return LogEntry{}, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol,
			fmt.Sprintf("short log line %q", line), nil)
	}
	sn, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return LogEntry{}, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol, "bad serial", err)
	}
	ts, err := time.ParseInLocation(TimeLayout, fields[2], time.UTC)
	if err != nil {
		return LogEntry{}, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol, "bad timestamp", err)
	}
	verifyType, _ := strconv.Atoi(fields[3])
	state, _ := strconv.Atoi(fields[4])
	return LogEntry{
		SN:         sn,
		UserID:     fields[1],
		RecordTime: ts,
		Type:       verifyType,
		State:      state,
		IP:         ip,
	}, nil
}
