// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	mailHost := strings.TrimSpace(os.Getenv("MAIL_HOST"))
	slack := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL"))

	if addr == "" {
		warn("ADDR is empty; the API will bind its default address.")
	} else {
		ok("ADDR=" + addr)
	}

	if db == "" {
		warn("DATABASE_URL empty — targets and alerts live in memory and vanish on restart.")
	} else {
		ok("DATABASE_URL present")
	}

	if mailHost == "" && slack == "" {
		warn("MAIL_HOST and SLACK_WEBHOOK_URL are both empty — alerts will be created but never delivered anywhere.")
	}
	if mailHost != "" {
		ok("MAIL_HOST=" + mailHost)
	}
	if slack != "" {
		if !strings.HasPrefix(slack, "https://") {
			fail("SLACK_WEBHOOK_URL must be an https URL.")
		}
		ok("SLACK_WEBHOOK_URL present")
	}

	if v := strings.TrimSpace(os.Getenv("CHECK_TIMEOUT")); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			fail("CHECK_TIMEOUT is not a valid duration (e.g. 10s): " + v)
		}
		ok("CHECK_TIMEOUT=" + v)
	}
	if v := strings.TrimSpace(os.Getenv("JOB_RETRY_BACKOFF")); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			fail("JOB_RETRY_BACKOFF is not a valid duration (e.g. 1m): " + v)
		}
		ok("JOB_RETRY_BACKOFF=" + v)
	}

	ok("preflight passed")
}
