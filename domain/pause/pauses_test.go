package pause_test

import (
	"context"
	"errors"
	"shopfloor/bizerror"
	"shopfloor/domain"
	"shopfloor/domain/pause"
	"shopfloor/testinfra"
	"slices"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestPauseLog(t *testing.T) {
	RegisterTestingT(t)
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("should open and close a pause", func(t *testing.T) {
		testDatabase := testinfra.StartSqliteTestDatabase()
		defer testinfra.StopTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		p, err := pause.OpenPause(db, 100, "tool change", t0)
		Expect(err).To(BeNil())
		Expect(p.IsOpen()).To(BeTrue())

		d, err := pause.ClosePause(db, 100, t0.Add(7*time.Minute))
		Expect(err).To(BeNil())
		Expect(d).To(Equal(7 * time.Minute))

		log, err := pause.LoadPauses(db, []types.ID{100})
		Expect(err).To(BeNil())
		pauses := log.Of(100)
		Expect(len(pauses)).To(Equal(1))
		Expect(pauses[0].IsOpen()).To(BeFalse())
		Expect(pauses[0].ResumedAt.Equal(t0.Add(7 * time.Minute))).To(BeTrue())
		Expect(log.ClosedDuration(100)).To(Equal(7 * time.Minute))
	})

	t.Run("should allow only one ongoing pause per record", func(t *testing.T) {
		testDatabase := testinfra.StartSqliteTestDatabase()
		defer testinfra.StopTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		_, err := pause.OpenPause(db, 100, "lunch", t0)
		Expect(err).To(BeNil())
		_, err = pause.OpenPause(db, 100, "lunch", t0.Add(time.Minute))
		Expect(errors.Is(err, bizerror.ErrInvalidState)).To(BeTrue())

		_, err = pause.OpenPause(db, 200, "lunch", t0)
		Expect(err).To(BeNil())
	})

	t.Run("should fail to close when nothing is open", func(t *testing.T) {
		testDatabase := testinfra.StartSqliteTestDatabase()
		defer testinfra.StopTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		_, err := pause.ClosePause(db, 100, t0)
		Expect(errors.Is(err, bizerror.ErrNoOpenPause)).To(BeTrue())
	})

	t.Run("should group pauses by record and filter absences", func(t *testing.T) {
		testDatabase := testinfra.StartSqliteTestDatabase()
		defer testinfra.StopTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		for i, reason := range []string{domain.ReasonLunch, "machine breakdown", domain.ReasonEndOfShift} {
			at := t0.Add(time.Duration(i) * time.Hour)
			_, err := pause.OpenPause(db, 1, reason, at)
			Expect(err).To(BeNil())
			_, err = pause.ClosePause(db, 1, at.Add(10*time.Minute))
			Expect(err).To(BeNil())
		}
		_, err := pause.OpenPause(db, 2, "waiting material", t0)
		Expect(err).To(BeNil())

		log, err := pause.LoadPauses(db, []types.ID{2, 1, 2, 3})
		Expect(err).To(BeNil())

		var order []types.ID
		counts := map[types.ID]int{}
		for id, pauses := range log.ByRecord() {
			order = append(order, id)
			counts[id] = len(pauses)
		}
		Expect(order).To(Equal([]types.ID{2, 1, 3}))
		Expect(counts).To(Equal(map[types.ID]int{2: 1, 1: 3, 3: 0}))

		var reasons []string
		for p := range log.Absences() {
			reasons = append(reasons, p.Reason)
		}
		Expect(reasons).To(Equal([]string{"waiting material", "machine breakdown"}))
		Expect(len(slices.Collect(log.All()))).To(Equal(4))
		// ranging twice yields the same snapshot
		Expect(len(slices.Collect(log.Absences()))).To(Equal(2))

		Expect(log.ClosedDuration(1)).To(Equal(30 * time.Minute))
		Expect(log.ClosedDuration(2)).To(BeZero())
	})

	t.Run("should stop iterating when the consumer stops", func(t *testing.T) {
		testDatabase := testinfra.StartSqliteTestDatabase()
		defer testinfra.StopTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())

		for _, id := range []types.ID{1, 2, 3} {
			_, err := pause.OpenPause(db, id, "setup", t0)
			Expect(err).To(BeNil())
		}
		log, err := pause.LoadPauses(db, []types.ID{1, 2, 3})
		Expect(err).To(BeNil())

		seen := 0
		for range log.All() {
			seen++
			if seen == 2 {
				break
			}
		}
		Expect(seen).To(Equal(2))
	})

	t.Run("should return empty log for no records", func(t *testing.T) {
		log, err := pause.LoadPauses(nil, nil)
		Expect(err).To(BeNil())
		Expect(len(slices.Collect(log.All()))).To(BeZero())
	})
}
