package store

// Key layout: one prefix byte per store, one byte per record kind.
const (
	KEY_IMAGE = 0x01
	OUTPUT    = 0x02
	POOL      = 0x03
	BLOCK     = 0x04
)

const (
	KEY_IMAGE_SPENT = 0x00
)

const (
	OUTPUT_KEY            = 0x00
	OUTPUT_KEY_COUNT      = 0x01
	OUTPUT_MULTISIG       = 0x02
	OUTPUT_MULTISIG_COUNT = 0x03
)

const (
	POOL_ENTRY   = 0x00
	POOL_DELETED = 0x01
	POOL_VERSION = 0x02
)

const (
	BLOCK_RECORD = 0x00
	BLOCK_HEIGHT = 0x01
)
