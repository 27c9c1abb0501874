package history

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/sceptre-labs/sceptre/src/verify"
)

func newMockJournal(t *testing.T) (*Journal, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error: %v", err)
	}
	return NewWithDB(gdb), mock
}

func TestRecordInsertsEntry(t *testing.T) {
	journal, mock := newMockJournal(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `verifications`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res := &verify.Result{
		CredibilityAssessment: "HIGH_RISK",
		ClassificationScore:   0.91,
		Summary:               "contradicted",
	}
	if err := journal.Record(context.Background(), verify.Text("The earth is flat."), res, "sess-1"); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecentListsNewestFirst(t *testing.T) {
	journal, mock := newMockJournal(t)

	rows := sqlmock.NewRows([]string{
		"id", "modality", "fingerprint", "assessment", "score", "summary", "session_id", "created_at",
	}).
		AddRow(2, "url", "00000000000000ab", "LOW_RISK", 0.12, "fine", "s2", time.Now()).
		AddRow(1, "text", "00000000000000cd", "HIGH_RISK", 0.91, "bad", "s1", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `verifications`")).
		WillReturnRows(rows)

	entries, err := journal.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != 2 || entries[1].ID != 1 {
		t.Fatalf("order wrong: %+v", entries)
	}
}

func TestFingerprintIsStablePerPayload(t *testing.T) {
	a := Fingerprint(verify.Text("same claim"))
	b := Fingerprint(verify.Text("same claim"))
	if a != b {
		t.Fatalf("same payload hashed differently: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("fingerprint length = %d, want 16", len(a))
	}
	if Fingerprint(verify.Text("other claim")) == a {
		t.Fatal("different payloads collided")
	}
	if Fingerprint(verify.URL("same claim")) != a {
		// Text and URL hash their string payloads the same way; only the
		// bytes matter for repeat detection.
		t.Fatal("url fingerprint diverged from identical text bytes")
	}
}
