package textual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bletext/internal/event"
)

func withData(data any) *event.Object {
	return event.NewObject().Set("id", 1).Set("name", "BLE_GAP_EVT_ADV_REPORT").Set("data", data)
}

func TestAdvertisingData(t *testing.T) {
	tests := []struct {
		name string
		ev   *event.Object
		want string
	}{
		{
			"no data",
			event.NewObject().Set("id", 1).Set("name", "BLE_GAP_EVT_CONNECTED"),
			"",
		},
		{
			"data is bytes",
			withData([]byte{1, 2}),
			"",
		},
		{
			"no gap fields",
			withData(event.NewObject().Set("raw", []byte{1}).Set("other", "x")),
			"",
		},
		{
			"empty flags",
			withData(event.NewObject().Set(FlagsKey, []any{})),
			"gap:[adTypeFlags:[]]",
		},
		{
			"null flags",
			withData(event.NewObject().Set(FlagsKey, nil)),
			"gap:[adTypeFlags:[]]",
		},
		{
			"single flag value",
			withData(event.NewObject().Set(FlagsKey, "BLE_GAP_ADV_FLAGS_LE_ONLY_GENERAL_DISC_MODE")),
			"gap:[adTypeFlags:[leOnlyGeneralDiscMode]]",
		},
		{
			"non-symbolic flag items",
			withData(event.NewObject().Set(FlagsKey, []any{
				"BLE_GAP_ADV_FLAG_LE_GENERAL_DISC_MODE",
				int64(6),
				[]byte{0x00, 0x0A},
				event.NewObject().Set("bit", 1),
			})),
			"gap:[adTypeFlags:[leGeneralDiscMode,6,000A,[bit:1]]]",
		},
		{
			"single byte flag value",
			withData(event.NewObject().Set(FlagsKey, []byte{0x06})),
			"gap:[adTypeFlags:[06]]",
		},
		{
			"flags precede fields inserted before them",
			withData(event.NewObject().
				Set("BLE_GAP_AD_TYPE_SHORT_LOCAL_NAME", "Thin").
				Set("BLE_GAP_AD_TYPE_TX_POWER_LEVEL", -8).
				Set(FlagsKey, []any{"BLE_GAP_ADV_FLAG_LE_GENERAL_DISC_MODE"})),
			"gap:[adTypeFlags:[leGeneralDiscMode] shortLocalName:Thin txPowerLevel:-8]",
		},
		{
			"values are passed through without rewriting",
			withData(event.NewObject().
				Set("BLE_GAP_AD_TYPE_COMPLETE_LOCAL_NAME", "MY_DEVICE").
				Set("BLE_GAP_AD_TYPE_16BIT_SERVICE_UUID_COMPLETE", []any{"180D", "180F"}).
				Set("BLE_GAP_AD_TYPE_SERVICE_DATA", []byte{0x0D, 0x18, 0x50})),
			"gap:[completeLocalName:MY_DEVICE 16BitServiceUuidComplete:180D,180F serviceData:0D1850]",
		},
		{
			"nested container rendered opaquely",
			withData(event.NewObject().
				Set("BLE_GAP_AD_TYPE_MANUFACTURER_SPECIFIC_DATA", event.NewObject().
					Set("company_identifier", 89).
					Set("data", []byte{0xAB}))),
			"gap:[manufacturerSpecificData:[company_identifier:89 data:AB]]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFormatter(t)

			got, err := f.AdvertisingData(tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvertisingDataCyclicValue(t *testing.T) {
	f, _ := newTestFormatter(t)

	loop := event.NewObject()
	loop.Set("self", loop)

	_, err := f.AdvertisingData(withData(event.NewObject().Set("BLE_GAP_AD_TYPE_SERVICE_DATA", loop)))
	assert.ErrorIs(t, err, ErrTooDeep)
}
