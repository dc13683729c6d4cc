// Package store owns all database access for the registry. Every mutation
// to device or policy state runs inside one transaction together with an
// append to the revisions table, so callers only ever observe fully
// applied or not applied state.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inhome/registry/internal/model"
	"github.com/inhome/registry/internal/netaddr"
)

// StorageError reports an underlying database failure. Any transaction in
// flight has been rolled back before this error is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store executes atomic operations over the devices, policies, revisions
// and users tables.
type Store struct {
	db *sql.DB
}

// New creates a Store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// withTx runs fn inside a transaction. fn returns (false, nil) for a soft
// failure: the transaction is rolled back and (false, nil) propagates to
// the caller. Any error from fn also rolls back and is wrapped in a
// StorageError. Commit happens only on (true, nil).
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) (bool, error)) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &StorageError{Op: op, Err: err}
	}
	ok, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return false, &StorageError{Op: op, Err: err}
	}
	if !ok {
		if err := tx.Rollback(); err != nil {
			return false, &StorageError{Op: op, Err: err}
		}
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, &StorageError{Op: op, Err: err}
	}
	return true, nil
}

// appendRevision inserts one row into the revisions table. Every committed
// device/policy mutation carries exactly one of these.
func appendRevision(ctx context.Context, tx *sql.Tx, now int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO revisions (revision_date) VALUES ($1)`, now)
	if err != nil {
		return false, fmt.Errorf("append revision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append revision: %w", err)
	}
	return n == 1, nil
}

// AddDevice inserts a device and a revision in one transaction. Returns
// false without error if either insert does not affect exactly one row.
func (s *Store) AddDevice(ctx context.Context, name string, mac netaddr.MAC, ipv4 netaddr.IPv4) (bool, error) {
	return s.withTx(ctx, "AddDevice", func(tx *sql.Tx) (bool, error) {
		now := time.Now().UTC().Unix()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO devices (mac, name, ipv4, date_added)
			VALUES ($1, $2, $3, $4)
		`, mac[:], name, ipv4[:], now)
		if err != nil {
			return false, fmt.Errorf("insert device: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("insert device: %w", err)
		}
		if n != 1 {
			return false, nil
		}
		return appendRevision(ctx, tx, now)
	})
}

// RemoveDevice deletes a device, every policy referencing it in either
// slot, and appends a revision, all in one transaction. A device without
// policies deletes cleanly; only the device row itself must exist.
func (s *Store) RemoveDevice(ctx context.Context, mac netaddr.MAC) (bool, error) {
	return s.withTx(ctx, "RemoveDevice", func(tx *sql.Tx) (bool, error) {
		now := time.Now().UTC().Unix()
		res, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE mac = $1`, mac[:])
		if err != nil {
			return false, fmt.Errorf("delete device: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("delete device: %w", err)
		}
		if n != 1 {
			return false, nil
		}
		// Zero policy rows is fine; the device may not appear in any policy.
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM policies WHERE device_from = $1 OR device_to = $1
		`, mac[:]); err != nil {
			return false, fmt.Errorf("delete policies for device: %w", err)
		}
		return appendRevision(ctx, tx, now)
	})
}

// RenameDevice updates a device name by its current name and appends a
// revision. Both statements must affect exactly one row.
func (s *Store) RenameDevice(ctx context.Context, oldName, newName string) (bool, error) {
	return s.withTx(ctx, "RenameDevice", func(tx *sql.Tx) (bool, error) {
		now := time.Now().UTC().Unix()
		res, err := tx.ExecContext(ctx, `
			UPDATE devices SET name = $1 WHERE name = $2
		`, newName, oldName)
		if err != nil {
			return false, fmt.Errorf("rename device: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("rename device: %w", err)
		}
		if n != 1 {
			return false, nil
		}
		return appendRevision(ctx, tx, now)
	})
}

// GetAllDevices returns every registered device in insertion order.
func (s *Store) GetAllDevices(ctx context.Context) ([]model.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mac, name, ipv4, ipv6, date_added, is_trusted
		FROM devices
		ORDER BY date_added, name
	`)
	if err != nil {
		return nil, &StorageError{Op: "GetAllDevices", Err: err}
	}
	defer rows.Close()

	var devices []model.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, &StorageError{Op: "GetAllDevices", Err: err}
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "GetAllDevices", Err: err}
	}
	return devices, nil
}

// GetOneDevice returns the device with the given hardware address. The
// second return value is false when no such device exists.
func (s *Store) GetOneDevice(ctx context.Context, mac netaddr.MAC) (model.Device, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT mac, name, ipv4, ipv6, date_added, is_trusted
		FROM devices
		WHERE mac = $1
	`, mac[:])
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return model.Device{}, false, nil
	}
	if err != nil {
		return model.Device{}, false, &StorageError{Op: "GetOneDevice", Err: err}
	}
	return d, true, nil
}

// AddPolicy resolves both device names and inserts a policy plus a
// revision in one transaction. Returns false without error when either
// name does not resolve to exactly one device.
func (s *Store) AddPolicy(ctx context.Context, nameFrom, nameTo string) (bool, error) {
	return s.withTx(ctx, "AddPolicy", func(tx *sql.Tx) (bool, error) {
		macFrom, ok, err := resolveName(ctx, tx, nameFrom)
		if err != nil || !ok {
			return false, err
		}
		macTo, ok, err := resolveName(ctx, tx, nameTo)
		if err != nil || !ok {
			return false, err
		}

		now := time.Now().UTC().Unix()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO policies (device_from, device_to) VALUES ($1, $2)
		`, macFrom, macTo)
		if err != nil {
			return false, fmt.Errorf("insert policy: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("insert policy: %w", err)
		}
		if n != 1 {
			return false, nil
		}
		return appendRevision(ctx, tx, now)
	})
}

// resolveName maps a device name to its hardware address. The name must
// match exactly one device; zero or multiple matches are a soft failure.
func resolveName(ctx context.Context, tx *sql.Tx, name string) ([]byte, bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT mac FROM devices WHERE name = $1`, name)
	if err != nil {
		return nil, false, fmt.Errorf("resolve device name: %w", err)
	}
	defer rows.Close()

	var macs [][]byte
	for rows.Next() {
		var mac []byte
		if err := rows.Scan(&mac); err != nil {
			return nil, false, fmt.Errorf("resolve device name: %w", err)
		}
		macs = append(macs, mac)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("resolve device name: %w", err)
	}
	if len(macs) != 1 {
		return nil, false, nil
	}
	return macs[0], true, nil
}

// RemovePolicyByID deletes one policy by its identifier and appends a
// revision in the same transaction.
func (s *Store) RemovePolicyByID(ctx context.Context, policyID int64) (bool, error) {
	return s.withTx(ctx, "RemovePolicyByID", func(tx *sql.Tx) (bool, error) {
		now := time.Now().UTC().Unix()
		res, err := tx.ExecContext(ctx, `DELETE FROM policies WHERE policy_id = $1`, policyID)
		if err != nil {
			return false, fmt.Errorf("delete policy: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("delete policy: %w", err)
		}
		if n != 1 {
			return false, nil
		}
		return appendRevision(ctx, tx, now)
	})
}

// GetAllPolicies returns every policy with both endpoints resolved to
// device names. A policy referencing a device that no longer exists is a
// data-integrity fault and reported as a StorageError.
func (s *Store) GetAllPolicies(ctx context.Context) ([]model.PolicyView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.policy_id, df.name, dt.name
		FROM policies p
		LEFT JOIN devices df ON df.mac = p.device_from
		LEFT JOIN devices dt ON dt.mac = p.device_to
		ORDER BY p.policy_id
	`)
	if err != nil {
		return nil, &StorageError{Op: "GetAllPolicies", Err: err}
	}
	defer rows.Close()

	var policies []model.PolicyView
	for rows.Next() {
		var p model.PolicyView
		var nameFrom, nameTo sql.NullString
		if err := rows.Scan(&p.ID, &nameFrom, &nameTo); err != nil {
			return nil, &StorageError{Op: "GetAllPolicies", Err: err}
		}
		if !nameFrom.Valid || !nameTo.Valid {
			return nil, &StorageError{
				Op:  "GetAllPolicies",
				Err: fmt.Errorf("policy %d references a missing device", p.ID),
			}
		}
		p.NameFrom = nameFrom.String
		p.NameTo = nameTo.String
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "GetAllPolicies", Err: err}
	}
	return policies, nil
}

// GetPoliciesForDeviceName returns the other endpoint of every policy
// that references a device with the given name, in either slot. Entries
// whose name equals the query name are excluded, so duplicate-named
// devices never report themselves as peers. The second return value is
// false when no device has that name.
func (s *Store) GetPoliciesForDeviceName(ctx context.Context, name string) ([]model.PolicyPeer, bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM devices WHERE name = $1
	`, name).Scan(&count)
	if err != nil {
		return nil, false, &StorageError{Op: "GetPoliciesForDeviceName", Err: err}
	}
	if count == 0 {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.name, d.mac, d.ipv4
		FROM devices q
		JOIN policies p ON p.device_from = q.mac OR p.device_to = q.mac
		JOIN devices d ON d.mac = p.device_from OR d.mac = p.device_to
		WHERE q.name = $1 AND LOWER(d.name) <> LOWER($1)
		ORDER BY p.policy_id
	`, name)
	if err != nil {
		return nil, false, &StorageError{Op: "GetPoliciesForDeviceName", Err: err}
	}
	defer rows.Close()

	var peers []model.PolicyPeer
	for rows.Next() {
		var peer model.PolicyPeer
		var macRaw, ipv4Raw []byte
		if err := rows.Scan(&peer.Name, &macRaw, &ipv4Raw); err != nil {
			return nil, false, &StorageError{Op: "GetPoliciesForDeviceName", Err: err}
		}
		if peer.MAC, err = netaddr.MACFromBytes(macRaw); err != nil {
			return nil, false, &StorageError{Op: "GetPoliciesForDeviceName", Err: err}
		}
		if peer.IPv4, err = netaddr.IPv4FromBytes(ipv4Raw); err != nil {
			return nil, false, &StorageError{Op: "GetPoliciesForDeviceName", Err: err}
		}
		peers = append(peers, peer)
	}
	if err := rows.Err(); err != nil {
		return nil, false, &StorageError{Op: "GetPoliciesForDeviceName", Err: err}
	}
	return peers, true, nil
}

// CountRevisions returns the number of committed mutations.
func (s *Store) CountRevisions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM revisions`).Scan(&count)
	if err != nil {
		return 0, &StorageError{Op: "CountRevisions", Err: err}
	}
	return count, nil
}

// CreateUser inserts a credential row. Returns false without error when
// the username is already taken.
func (s *Store) CreateUser(ctx context.Context, username, salt string, passwordHash []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, salt, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`, username, salt, passwordHash)
	if err != nil {
		return false, &StorageError{Op: "CreateUser", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "CreateUser", Err: err}
	}
	return n == 1, nil
}

// GetUser returns stored credentials for a username. The second return
// value is false when the user does not exist.
func (s *Store) GetUser(ctx context.Context, username string) (model.User, bool, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT username, salt, password_hash FROM users WHERE username = $1
	`, username).Scan(&u.Username, &u.Salt, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, &StorageError{Op: "GetUser", Err: err}
	}
	return u, true, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (model.Device, error) {
	var d model.Device
	var macRaw, ipv4Raw, ipv6Raw []byte
	if err := row.Scan(&macRaw, &d.Name, &ipv4Raw, &ipv6Raw, &d.DateAdded, &d.IsTrusted); err != nil {
		return model.Device{}, err
	}
	var err error
	if d.MAC, err = netaddr.MACFromBytes(macRaw); err != nil {
		return model.Device{}, err
	}
	if d.IPv4, err = netaddr.IPv4FromBytes(ipv4Raw); err != nil {
		return model.Device{}, err
	}
	if d.IPv6, err = netaddr.IPv6FromBytes(ipv6Raw); err != nil {
		return model.Device{}, err
	}
	return d, nil
}
