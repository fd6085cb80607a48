package domain_test

import (
	"shopfloor/domain"
	"testing"

	. "github.com/onsi/gomega"
)

func TestProductionStateMachine(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should only allow pause from IN_PROGRESS", func(t *testing.T) {
		transition, ok := domain.ProductionStateMachine.Fire(domain.ActionPause, string(domain.StatusInProgress))
		Expect(ok).To(BeTrue())
		Expect(transition.To).To(Equal(domain.StatePaused))

		_, ok = domain.ProductionStateMachine.Fire(domain.ActionPause, string(domain.StatusPaused))
		Expect(ok).To(BeFalse())
		_, ok = domain.ProductionStateMachine.Fire(domain.ActionPause, string(domain.StatusFinished))
		Expect(ok).To(BeFalse())
	})

	t.Run("should finish and continue from both open states", func(t *testing.T) {
		for _, action := range []string{domain.ActionFinish, domain.ActionContinue} {
			for _, from := range []domain.RecordStatus{domain.StatusInProgress, domain.StatusPaused} {
				transition, ok := domain.ProductionStateMachine.Fire(action, string(from))
				Expect(ok).To(BeTrue())
				Expect(transition.To).To(Equal(domain.StateFinished))
			}
			_, ok := domain.ProductionStateMachine.Fire(action, string(domain.StatusFinished))
			Expect(ok).To(BeFalse())
		}
	})

	t.Run("FINISHED should be terminal except for revert", func(t *testing.T) {
		Expect(domain.ProductionStateMachine.IsTerminal(string(domain.StatusFinished), domain.ActionRevert)).To(BeTrue())
		Expect(domain.ProductionStateMachine.IsTerminal(string(domain.StatusPaused), domain.ActionRevert)).To(BeFalse())
	})

	t.Run("absence reasons should exclude planned stops", func(t *testing.T) {
		Expect(domain.IsAbsenceReason(domain.ReasonLunch)).To(BeFalse())
		Expect(domain.IsAbsenceReason(domain.ReasonEndOfShift)).To(BeFalse())
		Expect(domain.IsAbsenceReason("machine breakdown")).To(BeTrue())
		Expect(domain.IsAbsenceReason("Lunch")).To(BeTrue())
	})
}
