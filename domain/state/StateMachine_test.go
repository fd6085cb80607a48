package state_test

import (
	"shopfloor/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
		doing        = state.State{Name: "DOING", Category: state.InProcess}
		held         = state.State{Name: "HELD", Category: state.OnHold}
		done         = state.State{Name: "DONE", Category: state.Done}
	)

	BeforeEach(func() {
		//         DOING        HELD         DONE
		// DOING   -            V (hold)     V (close)
		// HELD    V (release)  -            V (close)
		// DONE    X            V (undo)     -
		stateMachine = state.NewStateMachine(
			[]state.State{doing, held, done},
			[]state.Transition{
				{Name: "hold", From: doing, To: held},
				{Name: "release", From: held, To: doing},
				{Name: "close", From: doing, To: done},
				{Name: "close", From: held, To: done},
				{Name: "undo", From: done, To: held},
			})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by from and to state", func() {
			Expect(stateMachine.AvailableTransitions("DOING", "")).To(Equal([]state.Transition{
				{Name: "hold", From: doing, To: held},
				{Name: "close", From: doing, To: done},
			}))
			Expect(stateMachine.AvailableTransitions("", "DONE")).To(Equal([]state.Transition{
				{Name: "close", From: doing, To: done},
				{Name: "close", From: held, To: done},
			}))
			Expect(stateMachine.AvailableTransitions("DONE", "DOING")).To(BeEmpty())
			Expect(stateMachine.AvailableTransitions("UNKNOWN", "")).To(BeEmpty())
		})
	})

	Describe("Fire", func() {
		It("should find the transition by action and source state", func() {
			t, ok := stateMachine.Fire("close", "HELD")
			Expect(ok).To(BeTrue())
			Expect(t.To).To(Equal(done))

			_, ok = stateMachine.Fire("hold", "HELD")
			Expect(ok).To(BeFalse())
			_, ok = stateMachine.Fire("close", "DONE")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("FindState", func() {
		It("should find known states only", func() {
			s, ok := stateMachine.FindState("HELD")
			Expect(ok).To(BeTrue())
			Expect(s.Category).To(Equal(state.OnHold))

			_, ok = stateMachine.FindState("UNKNOWN")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("IsTerminal", func() {
		It("should treat a state as terminal when only excepted transitions leave it", func() {
			Expect(stateMachine.IsTerminal("DONE")).To(BeFalse())
			Expect(stateMachine.IsTerminal("DONE", "undo")).To(BeTrue())
			Expect(stateMachine.IsTerminal("DOING", "undo")).To(BeFalse())
		})
	})
})
