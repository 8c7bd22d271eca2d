package storagelog

import (
	"go.uber.org/zap"
)

// headMsg is a distinctive part of all messages.
const headMsg = "local object storage operation"

// Write writes message about storage engine's operation to logger.
// Operations are frequent, so they are logged at debug level.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Debug(headMsg, fields...)
}

// AddressField returns logger's field for object address.
func AddressField(addr uint64) zap.Field {
	return zap.Uint64("address", addr)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// StorageTypeField returns logger's field for storage type.
func StorageTypeField(typ string) zap.Field {
	return zap.String("type", typ)
}

// SizeField returns logger's field for the size of the object in bytes.
func SizeField(sz uint64) zap.Field {
	return zap.Uint64("size", sz)
}
