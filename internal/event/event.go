package event

// Reserved keys of a decoded BLE event
const (
	KeyID       = "id"
	KeyName     = "name"
	KeyAdvType  = "adv_type"
	KeyData     = "data"
	KeyRaw      = "raw"
	KeyRole     = "role"
	KeyPeerAddr = "peer_addr"
	KeyAddress  = "address"
)

// Name returns the symbolic event name, e.g. BLE_GAP_EVT_ADV_REPORT
func Name(ev *Object) (string, bool) {
	return ev.String(KeyName)
}

// HasID reports whether the event carries its driver-internal identifier
func HasID(ev *Object) bool {
	return ev.Has(KeyID)
}

// AdvType returns the symbolic advertisement type, if any
func AdvType(ev *Object) (string, bool) {
	return ev.String(KeyAdvType)
}

// Data returns the event's data field, which is either a *Object of
// advertising fields or a []byte payload.
func Data(ev *Object) (any, bool) {
	v, ok := ev.Get(KeyData)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
