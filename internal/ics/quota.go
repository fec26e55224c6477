package ics

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

var quotaTags = []mapi.PropTag{
	mapi.PrMessageSizeExtended,
	mapi.PrStorageQuotaLimit,
	mapi.PrAssocContentCount,
	mapi.PrContentCount,
}

// CheckQuota rejects transfers into a store whose size is over its quota
// (in KiB) or that holds more than maxMessages messages. A zero
// maxMessages disables the count check.
func CheckQuota(ctx context.Context, logon *Logon, maxMessages uint32) error {
	props, err := logon.Store.StoreProps(ctx, quotaTags)
	if err != nil {
		return fmt.Errorf("read store quota: %w", err)
	}
	size, _ := props.Uint64(mapi.PrMessageSizeExtended)
	if limit, ok := props.Uint32(mapi.PrStorageQuotaLimit); ok && size > uint64(limit)*1024 {
		logger.FromContext(ctx).Warn().
			Str("func", "CheckQuota").
			Uint64("size", size).
			Uint32("limit_kib", limit).
			Msg("store is over quota")
		return mapi.EcQuotaExceeded
	}
	if maxMessages == 0 {
		return nil
	}
	assoc, _ := props.Uint32(mapi.PrAssocContentCount)
	normal, _ := props.Uint32(mapi.PrContentCount)
	if uint64(assoc)+uint64(normal) > uint64(maxMessages) {
		return mapi.EcQuotaExceeded
	}
	return nil
}
