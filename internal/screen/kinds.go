package screen

import (
	"fmt"
	"net/url"
)

// Kind identifies which screen a session drives.
type Kind string

const (
	KindTable   Kind = "table"
	KindKitchen Kind = "kitchen"
	KindCashier Kind = "cashier"
	KindAdmin   Kind = "admin"
)

// Valid reports whether k is a known screen kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTable, KindKitchen, KindCashier, KindAdmin:
		return true
	}
	return false
}

// streamPaths maps each screen to its duplex endpoint.
var streamPaths = map[Kind]string{
	KindTable:   "/ws/table",
	KindKitchen: "/ws/kitchen",
	KindCashier: "/ws/cashier",
	KindAdmin:   "/ws/admin",
}

// StreamURL derives the duplex-connection URL from the REST base address:
// the scheme swaps http->ws (https->wss) and the screen-specific path is
// appended. The table screen carries its table id as a query parameter.
// The connection itself has no credential header, so a token, when
// required, is embedded in the query, along with the client instance id.
func StreamURL(baseURL string, kind Kind, tableID, token, clientID string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown screen kind %q", kind)
	}
	if kind == KindTable && tableID == "" {
		return "", fmt.Errorf("table screen requires a table id")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = u.Path + streamPaths[kind]

	q := u.Query()
	if kind == KindTable {
		q.Set("table", tableID)
	}
	if token != "" {
		q.Set("token", token)
	}
	if clientID != "" {
		q.Set("client_id", clientID)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
