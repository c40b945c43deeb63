package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func silverRow() model.NormalizedRow {
	return model.NormalizedRow{
		SourceDocumentID: "acme_rates",
		LevelCode:        "A",
		LevelName:        "Follow",
		Prices:           model.Prices{"300", "310", "320", "330", "340", "N/A"},
		LocationType:     model.Onshore,
	}
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rate_card_silver").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := New(mock).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWriteSilver(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	runID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rate_card_silver").
		WithArgs(runID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO rate_card_silver").
		WithArgs(runID, "acme_rates", "A", "Follow", "onshore", "300", "310", "320", "330", "340", "N/A").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := New(mock).WriteSilver(context.Background(), runID, []model.NormalizedRow{silverRow()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWriteGold(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	runID := uuid.New()
	gold := model.GoldTable{
		LevelNames: []string{"Follow", "Assist"},
		Rows: []model.GoldRow{{
			RateCardID:   1,
			Company:      "acme",
			LocationType: model.Offshore,
			Levels:       map[string]string{"Follow": "300"},
		}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rate_card_gold").
		WithArgs(runID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO rate_card_gold").
		WithArgs(runID, 1, "acme", "offshore", "Follow", "300").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := New(mock).WriteGold(context.Background(), runID, gold); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWrite_InsertErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	runID := uuid.New()
	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rate_card_silver").
		WithArgs(runID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO rate_card_silver").
		WillReturnError(boom)
	mock.ExpectRollback()

	err = New(mock).Write(context.Background(), runID, []model.NormalizedRow{silverRow()}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWrite_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	if err := New(mock).Write(context.Background(), uuid.New(), nil, nil); err == nil {
		t.Fatal("expected error from Begin, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
