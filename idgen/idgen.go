package idgen

import (
	"os"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

// MachineID is read by every worker created afterwards. Defaults to SHOPFLOOR_MACHINE_ID or 1.
var MachineID uint16 = 1

func init() {
	if v, err := strconv.ParseUint(os.Getenv("SHOPFLOOR_MACHINE_ID"), 10, 16); err == nil {
		MachineID = uint16(v)
	}
}

// NewWorker builds a sonyflake worker that does not depend on a private network address.
func NewWorker() *sonyflake.Sonyflake {
	return sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: func() (uint16, error) { return MachineID, nil },
	})
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
