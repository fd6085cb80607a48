package idgen_test

import (
	"shopfloor/idgen"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNextID(t *testing.T) {
	RegisterTestingT(t)

	worker := idgen.NewWorker()
	Expect(worker).ToNot(BeNil())

	id1 := idgen.NextID(worker)
	id2 := idgen.NextID(worker)
	Expect(id1).ToNot(BeZero())
	Expect(id2 > id1).To(BeTrue())
}
