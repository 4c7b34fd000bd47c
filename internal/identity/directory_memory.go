package identity

import (
	"context"
	"sort"
	"sync"

	dErrors "conocida/pkg/domain-errors"
)

// MemoryDirectory is the Directory test double.
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemoryDirectory(accounts ...Account) *MemoryDirectory {
	d := &MemoryDirectory{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		d.accounts[a.UID] = a
	}
	return d
}

func (d *MemoryDirectory) List(_ context.Context) ([]Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	if len(out) > listCap {
		out = out[:listCap]
	}
	return out, nil
}

func (d *MemoryDirectory) Delete(_ context.Context, uid string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[uid]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	delete(d.accounts, uid)
	return nil
}
