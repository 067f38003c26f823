package cmd

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mathquest/engine/internal/store"
)

func testCommand(t *testing.T, dbPath string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("db", dbPath, "")
	cmd.SetContext(context.Background())
	return cmd
}

// Engine writes must land before the command's deferred store close: a
// session generated in one process has to be answerable from the next.
func TestBuildEngineWritesBeforeClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	eng, st, err := buildEngine(testCommand(t, dbPath))
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	view, err := eng.Generate(ctx, "u1", 4, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// The durable row exists as soon as Generate returns.
	sess, err := st.SessionRepo().Get(ctx, "u1", view.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess == nil {
		t.Fatal("session not replicated before Generate returned")
	}

	res, err := eng.Submit(ctx, "u1", view.SessionID, strconv.Itoa(sess.Answer), 10, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct {
		t.Fatalf("expected correct submission: %+v", res)
	}

	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// A fresh process sees the completion and the attempt.
	st2, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st2.Close()

	stored, err := st2.SessionRepo().Get(ctx, "u1", view.SessionID)
	if err != nil {
		t.Fatalf("get stored session: %v", err)
	}
	if stored == nil || !stored.Completed {
		t.Errorf("completion not durable: %+v", stored)
	}

	n, err := st2.AttemptRepo().CorrectCount(ctx, "u1")
	if err != nil {
		t.Fatalf("correct count: %v", err)
	}
	if n != 1 {
		t.Errorf("correct count = %d, want 1", n)
	}
}

// Submitting from a second process resolves through the cold-read path
// against the replicated row.
func TestSubmitRecoversAcrossProcesses(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	eng, st, err := buildEngine(testCommand(t, dbPath))
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	view, err := eng.Generate(ctx, "u1", 5, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sess, err := st.SessionRepo().Get(ctx, "u1", view.SessionID)
	if err != nil || sess == nil {
		t.Fatalf("session not replicated: %v, %v", sess, err)
	}
	answer := sess.Answer
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Second process: empty cache, same database.
	eng2, st2, err := buildEngine(testCommand(t, dbPath))
	if err != nil {
		t.Fatalf("rebuild engine: %v", err)
	}
	defer st2.Close()

	res, err := eng2.Submit(ctx, "u1", view.SessionID, answer, 10, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.NotFound {
		t.Fatal("cold read should have recovered the session")
	}
	if !res.Correct {
		t.Errorf("expected correct submission: %+v", res)
	}
}
