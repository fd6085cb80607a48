package ledger_test

import (
	"shopfloor/domain"
	"shopfloor/domain/ledger"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Ledger", func() {
	var t0 time.Time

	BeforeEach(func() {
		t0 = time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	})

	at := func(d time.Duration) *time.Time {
		t := t0.Add(d)
		return &t
	}

	Describe("ActiveDuration", func() {
		It("should subtract closed pauses from a finished record", func() {
			r := &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0, EndTime: at(40 * time.Minute),
				AccumulatedPause: 15 * time.Minute, Quantity: 1}
			Expect(ledger.ActiveDuration(r, t0.Add(10*time.Hour))).To(Equal(25 * time.Minute))
		})

		It("should measure an in-progress record up to now", func() {
			r := &domain.ProductionRecord{Status: domain.StatusInProgress, StartTime: t0, AccumulatedPause: 5 * time.Minute}
			Expect(ledger.ActiveDuration(r, t0.Add(30*time.Minute))).To(Equal(25 * time.Minute))
		})

		It("should subtract the open pause of a paused record", func() {
			r := &domain.ProductionRecord{Status: domain.StatusPaused, StartTime: t0, AccumulatedPause: 5 * time.Minute,
				OpenPauseStart: at(20 * time.Minute)}
			Expect(ledger.ActiveDuration(r, t0.Add(50*time.Minute))).To(Equal(15 * time.Minute))
			Expect(ledger.ActiveDuration(r, t0.Add(90*time.Minute))).To(Equal(15 * time.Minute))
		})

		It("should never be negative", func() {
			r := &domain.ProductionRecord{Status: domain.StatusInProgress, StartTime: t0}
			Expect(ledger.ActiveDuration(r, t0.Add(-time.Hour))).To(BeZero())

			r = &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0, EndTime: at(time.Minute),
				AccumulatedPause: time.Hour}
			Expect(ledger.ActiveDuration(r, t0)).To(BeZero())

			r = &domain.ProductionRecord{Status: domain.StatusPaused, StartTime: t0, OpenPauseStart: at(time.Hour)}
			Expect(ledger.ActiveDuration(r, t0.Add(30*time.Minute))).To(Equal(30 * time.Minute))
			Expect(ledger.ActiveDuration(r, t0.Add(-time.Minute))).To(BeZero())
		})
	})

	Describe("TimePerPiece", func() {
		It("should divide active minutes by quantity for finished records", func() {
			r := &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0, EndTime: at(10 * time.Minute), Quantity: 3}
			v, ok := ledger.TimePerPiece(r, t0)
			Expect(ok).To(BeTrue())
			Expect(v.String()).To(Equal("3.33"))
		})

		It("should round half up", func() {
			// 10.125 minutes over 1 piece -> 10.13
			r := &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0,
				EndTime: at(10*time.Minute + 7500*time.Millisecond), Quantity: 1}
			v, ok := ledger.TimePerPiece(r, t0)
			Expect(ok).To(BeTrue())
			Expect(v.String()).To(Equal("10.13"))
		})

		It("should be undefined for unfinished records or zero quantity", func() {
			r := &domain.ProductionRecord{Status: domain.StatusInProgress, StartTime: t0, Quantity: 3}
			_, ok := ledger.TimePerPiece(r, t0.Add(time.Hour))
			Expect(ok).To(BeFalse())

			r = &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0, EndTime: at(time.Hour)}
			_, ok = ledger.TimePerPiece(r, t0)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("MachineCost", func() {
		It("should multiply hourly rate by active hours", func() {
			r := &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0, EndTime: at(90 * time.Minute),
				AccumulatedPause: 10 * time.Minute}
			cost, ok := ledger.MachineCost(r, decimal.RequireFromString("45"), t0)
			Expect(ok).To(BeTrue())
			Expect(cost.String()).To(Equal("60"))
		})

		It("should round money half up to cents", func() {
			// 1 minute at 0.45/h = 0.0075 -> 0.01
			r := &domain.ProductionRecord{Status: domain.StatusFinished, StartTime: t0, EndTime: at(time.Minute)}
			cost, ok := ledger.MachineCost(r, decimal.RequireFromString("0.45"), t0)
			Expect(ok).To(BeTrue())
			Expect(cost.StringFixed(2)).To(Equal("0.01"))
		})

		It("should be undefined for unfinished records", func() {
			r := &domain.ProductionRecord{Status: domain.StatusPaused, StartTime: t0, OpenPauseStart: at(time.Minute)}
			_, ok := ledger.MachineCost(r, decimal.RequireFromString("45"), t0.Add(time.Hour))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Minutes", func() {
		It("should round to two places half up", func() {
			Expect(ledger.Minutes(25 * time.Minute).String()).To(Equal("25"))
			Expect(ledger.Minutes(90 * time.Second).String()).To(Equal("1.5"))
			Expect(ledger.Minutes(20 * time.Second).String()).To(Equal("0.33"))
			Expect(ledger.Minutes(40 * time.Second).String()).To(Equal("0.67"))
			Expect(ledger.Minutes(300 * time.Millisecond).String()).To(Equal("0.01"))
		})

		It("should round whole minutes half up", func() {
			Expect(ledger.WholeMinutes(29*time.Second + 999*time.Millisecond)).To(Equal(int64(0)))
			Expect(ledger.WholeMinutes(30 * time.Second)).To(Equal(int64(1)))
			Expect(ledger.WholeMinutes(50*time.Minute + 30*time.Second)).To(Equal(int64(51)))
		})
	})
})
