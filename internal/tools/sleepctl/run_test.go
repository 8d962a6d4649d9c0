package sleepctl

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	server "github.com/louisbranch/sleepsleep/internal/services/ledger/app"
)

func localConfig(t *testing.T, command string) Config {
	t.Helper()
	return Config{
		Command:   command,
		Key:       "42",
		Locale:    "en-US",
		Timeout:   5 * time.Second,
		UTCOffset: 8,
		Page:      1,
		Runtime: server.RuntimeConfig{
			Store:    server.StoreJSON,
			DataDir:  filepath.Join(t.TempDir(), "data"),
			Timezone: 8,
		},
	}
}

func run(t *testing.T, cfg Config, command string) (string, error) {
	t.Helper()
	cfg.Command = command
	var out, errOut strings.Builder
	err := Run(context.Background(), cfg, &out, &errOut)
	return out.String(), err
}

func mustRun(t *testing.T, cfg Config, command string) string {
	t.Helper()
	out, err := run(t, cfg, command)
	if err != nil {
		t.Fatalf("%s: %v", command, err)
	}
	return out
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Fatalf("output %q does not contain %q", got, w)
		}
	}
}

func TestRunLocalCommands(t *testing.T) {
	t.Parallel()

	cfg := localConfig(t, "")

	_, err := run(t, cfg, CommandStatus)
	if !apperrors.HasCode(err, apperrors.CodeNotSignedUp) {
		t.Fatalf("status before sign up error = %v, want %s", err, apperrors.CodeNotSignedUp)
	}

	assertContains(t, mustRun(t, cfg, CommandSignUp), "Signed up", "Today is your 元年 1 月 1 日.", "Recorded at ")

	_, err = run(t, cfg, CommandSignUp)
	if !apperrors.HasCode(err, apperrors.CodeAlreadyRegistered) {
		t.Fatalf("second sign up error = %v, want %s", err, apperrors.CodeAlreadyRegistered)
	}

	assertContains(t, mustRun(t, cfg, CommandStatus), "You have not left today yet", "It is 元年 1 月 1 日")
	assertContains(t, mustRun(t, cfg, CommandSleep), "Good night", "You finished your 元年 1 月 1 日 after ")
	assertContains(t, mustRun(t, cfg, CommandStatus), "Waiting for tomorrow", "You left 元年 1 月 1 日")

	history := mustRun(t, cfg, CommandLog)
	assertContains(t, history, "Your sleep history (page 1 of 1)", "元年 1 月 1 日 SLEEP | Hash: ", "元年 1 月 1 日 WAKE_UP | Hash: ", "+08:00")
	if strings.Index(history, "SLEEP") > strings.Index(history, "WAKE_UP") {
		t.Fatalf("history is not newest first: %q", history)
	}

	empty := cfg
	empty.Page = 5
	assertContains(t, mustRun(t, empty, CommandLog), "Your sleep history (page 5 of 1)", "No records on this page.")
	empty.Page = 1_000_000_000_000_000_000
	assertContains(t, mustRun(t, empty, CommandLog), "No records on this page.")

	filtered := cfg
	filtered.Filter = `type = "WAKE_UP"`
	filteredOut := mustRun(t, filtered, CommandLog)
	if strings.Contains(filteredOut, "SLEEP |") {
		t.Fatalf("filtered history contains SLEEP: %q", filteredOut)
	}

	assertContains(t, mustRun(t, cfg, CommandDump), `"type": "WAKE_UP"`, `"type": "SLEEP"`)
	assertContains(t, mustRun(t, cfg, CommandRebuild), "Rebuilt 2 records, 0 changed.")
	assertContains(t, mustRun(t, cfg, CommandCancel), "Cancelled the last record", "SLEEP | Hash: ")
	assertContains(t, mustRun(t, cfg, CommandStatus), "You have not left today yet")
}

func TestRunLocalizedOutput(t *testing.T) {
	t.Parallel()

	cfg := localConfig(t, "")
	cfg.Locale = "zh-TW"
	assertContains(t, mustRun(t, cfg, CommandSignUp), "註冊成功", "今天是你的 元年 1 月 1 日。")

	_, err := run(t, cfg, CommandWake)
	if got := Describe(cfg.Locale, err); !strings.HasPrefix(got, "你不是起床了嗎？") {
		t.Fatalf("describe = %q", got)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Parallel()

	cfg := localConfig(t, "")
	mustRun(t, cfg, CommandSignUp)

	bad := cfg
	bad.Time = "25:00"
	if _, err := run(t, bad, CommandSleep); !apperrors.HasCode(err, apperrors.CodeMalformedTime) {
		t.Fatalf("sleep error = %v, want %s", err, apperrors.CodeMalformedTime)
	}
	bad = cfg
	bad.Filter = "type ="
	if _, err := run(t, bad, CommandLog); !apperrors.HasCode(err, apperrors.CodeInvalidFilter) {
		t.Fatalf("log error = %v, want %s", err, apperrors.CodeInvalidFilter)
	}
	bad = cfg
	bad.Key = "../escape"
	if _, err := run(t, bad, CommandStatus); !apperrors.HasCode(err, apperrors.CodeInvalidKey) {
		t.Fatalf("status error = %v, want %s", err, apperrors.CodeInvalidKey)
	}
	bad = cfg
	bad.Runtime.Store = "redis"
	if _, err := run(t, bad, CommandStatus); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestRunRemote(t *testing.T) {
	t.Parallel()

	srv, err := server.NewWithConfig("127.0.0.1:0", server.RuntimeConfig{
		Store:    server.StoreJSON,
		DataDir:  t.TempDir(),
		Timezone: 8,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	runCtx, runCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})

	cfg := localConfig(t, "")
	cfg.Addr = srv.Addr()
	cfg.Locale = "zh-TW"

	assertContains(t, mustRun(t, cfg, CommandSignUp), "註冊成功")
	assertContains(t, mustRun(t, cfg, CommandSleep), "晚安，馬卡巴卡")

	_, err = run(t, cfg, CommandSleep)
	domainErr, ok := apperrors.As(err)
	if !ok || domainErr.Code != apperrors.CodeAlreadyAsleep {
		t.Fatalf("sleep twice error = %v, want %s", err, apperrors.CodeAlreadyAsleep)
	}
	if got := Describe(cfg.Locale, err); !strings.HasPrefix(got, "沒想到你是那種說晚安之後去滑手機的人。") {
		t.Fatalf("describe = %q", got)
	}

	// The local store next to the client stays untouched.
	local := cfg
	local.Addr = ""
	if _, err := run(t, local, CommandStatus); !apperrors.HasCode(err, apperrors.CodeNotSignedUp) {
		t.Fatalf("local status error = %v, want %s", err, apperrors.CodeNotSignedUp)
	}
}

func TestRunRemoteUnreachable(t *testing.T) {
	t.Parallel()

	cfg := localConfig(t, CommandStatus)
	cfg.Addr = "127.0.0.1:1"
	if _, err := run(t, cfg, CommandStatus); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	if got := Describe("en-US", nil); got != "" {
		t.Fatalf("describe nil = %q, want empty", got)
	}
	if got := Describe("en-US", errors.New("boom")); got != "Error: boom" {
		t.Fatalf("describe = %q, want Error: boom", got)
	}
	err := apperrors.New(apperrors.CodeNotSignedUp, "ledger is empty")
	if got := Describe("zh-TW", err); got != "請先進行註冊。" {
		t.Fatalf("describe = %q", got)
	}
}
