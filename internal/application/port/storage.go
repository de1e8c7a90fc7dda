package port

// Storage is the persisted key-value store of the client session
// (the browser's localStorage). Reads never fail: a missing key or an
// unreadable backend both report ok=false.
type Storage interface {
	GetItem(key string) (value string, ok bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Clear() error
}
