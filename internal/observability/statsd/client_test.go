package statsd

import (
	"net"
	"strings"
	"testing"
)

func TestFormatTags(t *testing.T) {
	t.Parallel()

	got := formatTags(map[string]string{
		"provider": " adzuna ",
		"result":   "success",
		"":         "ignored",
	})
	want := "|#provider:adzuna,result:success"

	if got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestFormatTagsEmpty(t *testing.T) {
	t.Parallel()

	if got := formatTags(nil); got != "" {
		t.Fatalf("formatTags(nil) = %q, want empty string", got)
	}
}

func TestMetricName(t *testing.T) {
	t.Parallel()

	c := &Client{prefix: "ingest"}
	tests := map[string]string{
		"run.duration": "ingest.run.duration",
		" jobs/added ": "ingest.jobs_added",
		"multi space":  "ingest.multi_space",
		"":             "ingest",
	}
	for input, want := range tests {
		if got := c.metricName(input); got != want {
			t.Fatalf("metricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Enabled() {
		t.Fatal("disabled client reports enabled")
	}
	// Must not panic without a connection.
	c.Count("run.count", 1, nil)

	var nilClient *Client
	nilClient.Count("run.count", 1, nil)
	if nilClient.Enabled() {
		t.Fatal("nil client reports enabled")
	}
}

func TestClientEmitsLineProtocol(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "ingest"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	c.Count("jobs.added", 3, map[string]string{"provider": "adzuna"})

	buf := make([]byte, 256)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	line := string(buf[:n])
	if !strings.HasPrefix(line, "ingest.jobs.added:3|c") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "provider:adzuna") {
		t.Fatalf("missing tag in %q", line)
	}
}
