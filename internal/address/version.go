package address

import "math"

// Version is a monotonically increasing ledger height.
type Version = uint64

// PreGenesisVersion is the reserved sentinel meaning "before the genesis
// transaction" — used as the lower bound when no prior version exists yet.
const PreGenesisVersion Version = math.MaxUint64
