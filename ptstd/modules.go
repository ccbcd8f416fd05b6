package ptstd

import (
	"github.com/TheusHen/ptstd/ptstd/feature"
)

// Module is a capability package selected by a leaf feature.
type Module struct {
	Feature feature.Name
	Package string
	Summary string
}

const modulePath = "github.com/TheusHen/ptstd/ptstd/"

var modules = map[feature.Name]Module{
	feature.Crypto: {feature.Crypto, modulePath + "crypto", "AES-256-CBC, RSA-2048 PKCS#1 v1.5, SHA-256, HKDF, ChaCha20-Poly1305"},
	feature.Linear: {feature.Linear, modulePath + "linear", "matrix literals and chained multiplication"},
	feature.Log:    {feature.Log, modulePath + "log", "leveled console/file logger"},
	feature.Chrono: {feature.Chrono, modulePath + "log", "local timestamps with nanoseconds and zone offset"},
	feature.Net:    {feature.Net, modulePath + "net", "stop-and-wait message protocol over TCP and QUIC"},
	feature.Ptr:    {feature.Ptr, modulePath + "ptr", "shared reference-counted and nullable pointers"},
	feature.Thread: {feature.Thread, modulePath + "thread", "fixed-size worker pool"},
}

// Modules lists the packages selected by features, sorted by feature name.
// With no features the default set is used.
func Modules(features ...feature.Name) ([]Module, error) {
	leaves, err := feature.Manifest().Leaves(features...)
	if err != nil {
		return nil, err
	}
	out := make([]Module, 0, len(leaves))
	for _, n := range leaves {
		if m, ok := modules[n]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}
