package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vaultwallet/keyring/internal/model"
)

// SQLStore is a database/sql-backed Store, driven by mattn/go-sqlite3 in
// cmd/walletd's default configuration. It opens no connection pool policy
// beyond what database/sql provides and runs every statement through the
// *sql.DB or, inside WithTx, through a *sql.Tx satisfying the same Store
// interface via sqlExecutor.
type SQLStore struct {
	db *sql.DB
}

// Open opens (creating if absent) a SQLite database at dsn and ensures the
// schema exists.
func Open(dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "open sqlite database", err)
	}
	s := &SQLStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS vaults (
	wallet_id TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	kdf_memory_kib INTEGER NOT NULL,
	kdf_iterations INTEGER NOT NULL,
	kdf_parallelism INTEGER NOT NULL,
	salt BLOB NOT NULL,
	nonce BLOB NOT NULL,
	ciphertext BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	wallet_id TEXT NOT NULL,
	chain TEXT NOT NULL,
	derivation_path TEXT NOT NULL,
	derivation_index INTEGER NOT NULL,
	public_key TEXT NOT NULL,
	address TEXT NOT NULL,
	name TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (wallet_id, chain, derivation_index)
);
CREATE TABLE IF NOT EXISTS multisig_groups (
	id TEXT PRIMARY KEY,
	chain TEXT NOT NULL,
	owners TEXT NOT NULL,
	threshold INTEGER NOT NULL,
	group_address TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS multisig_proposals (
	id TEXT PRIMARY KEY,
	group_id TEXT NOT NULL,
	proposer_addr TEXT NOT NULL,
	to_addr TEXT NOT NULL,
	amount TEXT NOT NULL,
	data BLOB,
	nonce INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	approvals TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	executed_at TEXT,
	executed_tx_hash TEXT
);
`

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "schema migration failed", err)
	}
	return nil
}

// sqlExecutor is the subset of *sql.DB and *sql.Tx the query helpers need,
// letting the same helper functions serve both the top-level SQLStore and the
// transaction-scoped view WithTx hands to its callback.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) PutVault(ctx context.Context, walletID string, e *model.EncryptedSeed) error {
	return putVault(ctx, s.db, walletID, e)
}
func (s *SQLStore) GetVault(ctx context.Context, walletID string) (*model.EncryptedSeed, error) {
	return getVault(ctx, s.db, walletID)
}
func (s *SQLStore) DeleteVault(ctx context.Context, walletID string) error {
	return deleteVault(ctx, s.db, walletID)
}
func (s *SQLStore) InsertAccount(ctx context.Context, walletID string, a model.Account) error {
	return insertAccount(ctx, s.db, walletID, a)
}
func (s *SQLStore) ListAccounts(ctx context.Context, walletID string) ([]model.Account, error) {
	return listAccounts(ctx, s.db, walletID)
}
func (s *SQLStore) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	return getAccount(ctx, s.db, accountID)
}
func (s *SQLStore) DeleteAccount(ctx context.Context, walletID string, chain model.Chain, index uint32) error {
	return deleteAccount(ctx, s.db, walletID, chain, index)
}
func (s *SQLStore) InsertProposal(ctx context.Context, p *model.MultisigProposal) error {
	return insertProposal(ctx, s.db, p)
}
func (s *SQLStore) UpdateProposal(ctx context.Context, p *model.MultisigProposal) error {
	return updateProposal(ctx, s.db, p)
}
func (s *SQLStore) ListProposals(ctx context.Context, groupID string) ([]*model.MultisigProposal, error) {
	return listProposals(ctx, s.db, groupID)
}
func (s *SQLStore) GetProposal(ctx context.Context, id string) (*model.MultisigProposal, error) {
	return getProposal(ctx, s.db, id)
}
func (s *SQLStore) InsertGroup(ctx context.Context, g *model.MultisigGroup) error {
	return insertGroup(ctx, s.db, g)
}
func (s *SQLStore) GetGroup(ctx context.Context, id string) (*model.MultisigGroup, error) {
	return getGroup(ctx, s.db, id)
}
func (s *SQLStore) ListGroups(ctx context.Context) ([]*model.MultisigGroup, error) {
	return listGroups(ctx, s.db)
}

// WithTx opens a real *sql.Tx and hands the callback a Store view backed by
// it, satisfying the reset (vault delete + cascade) and
// approval-plus-status-transition atomicity requirements directly through
// SQLite's own transaction support.
func (s *SQLStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "begin transaction", err)
	}
	if err := fn(ctx, &sqlTx{tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "commit transaction", err)
	}
	return nil
}

type sqlTx struct{ tx *sql.Tx }

func (t *sqlTx) PutVault(ctx context.Context, walletID string, e *model.EncryptedSeed) error {
	return putVault(ctx, t.tx, walletID, e)
}
func (t *sqlTx) GetVault(ctx context.Context, walletID string) (*model.EncryptedSeed, error) {
	return getVault(ctx, t.tx, walletID)
}
func (t *sqlTx) DeleteVault(ctx context.Context, walletID string) error {
	return deleteVault(ctx, t.tx, walletID)
}
func (t *sqlTx) InsertAccount(ctx context.Context, walletID string, a model.Account) error {
	return insertAccount(ctx, t.tx, walletID, a)
}
func (t *sqlTx) ListAccounts(ctx context.Context, walletID string) ([]model.Account, error) {
	return listAccounts(ctx, t.tx, walletID)
}
func (t *sqlTx) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	return getAccount(ctx, t.tx, accountID)
}
func (t *sqlTx) DeleteAccount(ctx context.Context, walletID string, chain model.Chain, index uint32) error {
	return deleteAccount(ctx, t.tx, walletID, chain, index)
}
func (t *sqlTx) InsertProposal(ctx context.Context, p *model.MultisigProposal) error {
	return insertProposal(ctx, t.tx, p)
}
func (t *sqlTx) UpdateProposal(ctx context.Context, p *model.MultisigProposal) error {
	return updateProposal(ctx, t.tx, p)
}
func (t *sqlTx) ListProposals(ctx context.Context, groupID string) ([]*model.MultisigProposal, error) {
	return listProposals(ctx, t.tx, groupID)
}
func (t *sqlTx) GetProposal(ctx context.Context, id string) (*model.MultisigProposal, error) {
	return getProposal(ctx, t.tx, id)
}
func (t *sqlTx) InsertGroup(ctx context.Context, g *model.MultisigGroup) error {
	return insertGroup(ctx, t.tx, g)
}
func (t *sqlTx) GetGroup(ctx context.Context, id string) (*model.MultisigGroup, error) {
	return getGroup(ctx, t.tx, id)
}
func (t *sqlTx) ListGroups(ctx context.Context) ([]*model.MultisigGroup, error) {
	return listGroups(ctx, t.tx)
}
func (t *sqlTx) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

func putVault(ctx context.Context, ex sqlExecutor, walletID string, e *model.EncryptedSeed) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO vaults (wallet_id, version, kdf_memory_kib, kdf_iterations, kdf_parallelism, salt, nonce, ciphertext)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(wallet_id) DO UPDATE SET
			version=excluded.version, kdf_memory_kib=excluded.kdf_memory_kib,
			kdf_iterations=excluded.kdf_iterations, kdf_parallelism=excluded.kdf_parallelism,
			salt=excluded.salt, nonce=excluded.nonce, ciphertext=excluded.ciphertext`,
		walletID, e.Version, e.KDF.MemoryKiB, e.KDF.Iterations, e.KDF.Parallelism, e.Salt, e.Nonce, e.Ciphertext)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "put_vault failed", err)
	}
	return nil
}

func getVault(ctx context.Context, ex sqlExecutor, walletID string) (*model.EncryptedSeed, error) {
	row := ex.QueryRowContext(ctx, `SELECT version, kdf_memory_kib, kdf_iterations, kdf_parallelism, salt, nonce, ciphertext FROM vaults WHERE wallet_id = ?`, walletID)
	var e model.EncryptedSeed
	if err := row.Scan(&e.Version, &e.KDF.MemoryKiB, &e.KDF.Iterations, &e.KDF.Parallelism, &e.Salt, &e.Nonce, &e.Ciphertext); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, model.Wrap(model.ErrStorageUnavailable, "get_vault failed", err)
	}
	return &e, nil
}

func deleteVault(ctx context.Context, ex sqlExecutor, walletID string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM vaults WHERE wallet_id = ?`, walletID); err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "delete_vault failed", err)
	}
	if _, err := ex.ExecContext(ctx, `DELETE FROM accounts WHERE wallet_id = ?`, walletID); err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "delete_vault cascade failed", err)
	}
	return nil
}

func insertAccount(ctx context.Context, ex sqlExecutor, walletID string, a model.Account) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO accounts (id, wallet_id, chain, derivation_path, derivation_index, public_key, address, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, walletID, string(a.Chain), a.DerivationPath, a.DerivationIndex, a.PublicKey, a.Address, a.Name,
		a.CreatedAt.Format(time.RFC3339Nano), a.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "insert_account failed", err)
	}
	return nil
}

func listAccounts(ctx context.Context, ex sqlExecutor, walletID string) ([]model.Account, error) {
	rows, err := ex.QueryContext(ctx, `SELECT id, wallet_id, chain, derivation_path, derivation_index, public_key, address, name, created_at, updated_at FROM accounts WHERE wallet_id = ?`, walletID)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "list_accounts failed", err)
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func getAccount(ctx context.Context, ex sqlExecutor, accountID string) (model.Account, error) {
	row := ex.QueryRowContext(ctx, `SELECT id, wallet_id, chain, derivation_path, derivation_index, public_key, address, name, created_at, updated_at FROM accounts WHERE id = ?`, accountID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

func scanAccount(s scanner) (model.Account, error) {
	var a model.Account
	var chain, name, createdAt, updatedAt string
	if err := s.Scan(&a.ID, &a.WalletID, &chain, &a.DerivationPath, &a.DerivationIndex, &a.PublicKey, &a.Address, &name, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return model.Account{}, err
		}
		return model.Account{}, model.Wrap(model.ErrStorageUnavailable, "scan account failed", err)
	}
	a.Chain = model.Chain(chain)
	a.Name = name
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		a.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		a.UpdatedAt = t
	}
	return a, nil
}

func deleteAccount(ctx context.Context, ex sqlExecutor, walletID string, chain model.Chain, index uint32) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM accounts WHERE wallet_id = ? AND chain = ? AND derivation_index = ?`, walletID, string(chain), index)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "delete_account failed", err)
	}
	return nil
}

func insertProposal(ctx context.Context, ex sqlExecutor, p *model.MultisigProposal) error {
	approvals, err := json.Marshal(p.Approvals)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "marshal approvals failed", err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO multisig_proposals (id, group_id, proposer_addr, to_addr, amount, data, nonce, status, approvals, created_at, updated_at, executed_at, executed_tx_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.GroupID, p.ProposerAddr, p.To, p.Amount, p.Data, p.Nonce, string(p.Status), string(approvals),
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano), formatTimePtr(p.ExecutedAt), p.ExecutedTxHash)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "insert_proposal failed", err)
	}
	return nil
}

func updateProposal(ctx context.Context, ex sqlExecutor, p *model.MultisigProposal) error {
	approvals, err := json.Marshal(p.Approvals)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "marshal approvals failed", err)
	}
	_, err = ex.ExecContext(ctx, `
		UPDATE multisig_proposals SET status = ?, approvals = ?, updated_at = ?, executed_at = ?, executed_tx_hash = ? WHERE id = ?`,
		string(p.Status), string(approvals), p.UpdatedAt.Format(time.RFC3339Nano), formatTimePtr(p.ExecutedAt), p.ExecutedTxHash, p.ID)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "update_proposal failed", err)
	}
	return nil
}

func listProposals(ctx context.Context, ex sqlExecutor, groupID string) ([]*model.MultisigProposal, error) {
	rows, err := ex.QueryContext(ctx, `SELECT id, group_id, proposer_addr, to_addr, amount, data, nonce, status, approvals, created_at, updated_at, executed_at, executed_tx_hash FROM multisig_proposals WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "list_proposals failed", err)
	}
	defer rows.Close()
	var out []*model.MultisigProposal
	for rows.Next() {
		p, err := scanProposalRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func getProposal(ctx context.Context, ex sqlExecutor, id string) (*model.MultisigProposal, error) {
	row := ex.QueryRowContext(ctx, `SELECT id, group_id, proposer_addr, to_addr, amount, data, nonce, status, approvals, created_at, updated_at, executed_at, executed_tx_hash FROM multisig_proposals WHERE id = ?`, id)
	p, err := scanProposalRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProposalRow(s scanner) (*model.MultisigProposal, error) {
	var p model.MultisigProposal
	var status, approvalsJSON, createdAt, updatedAt string
	var executedAt sql.NullString
	if err := s.Scan(&p.ID, &p.GroupID, &p.ProposerAddr, &p.To, &p.Amount, &p.Data, &p.Nonce, &status, &approvalsJSON, &createdAt, &updatedAt, &executedAt, &p.ExecutedTxHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, model.Wrap(model.ErrStorageUnavailable, "scan proposal failed", err)
	}
	p.Status = model.MultisigTxStatus(status)
	p.Approvals = make(map[string]bool)
	if err := json.Unmarshal([]byte(approvalsJSON), &p.Approvals); err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "unmarshal approvals failed", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	if executedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, executedAt.String); err == nil {
			p.ExecutedAt = &t
		}
	}
	return &p, nil
}

func insertGroup(ctx context.Context, ex sqlExecutor, g *model.MultisigGroup) error {
	owners, err := json.Marshal(g.Owners)
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "marshal owners failed", err)
	}
	_, err = ex.ExecContext(ctx, `INSERT INTO multisig_groups (id, chain, owners, threshold, group_address, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, string(g.Chain), string(owners), g.Threshold, g.GroupAddress, g.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Wrap(model.ErrStorageUnavailable, "insert_group failed", err)
	}
	return nil
}

func getGroup(ctx context.Context, ex sqlExecutor, id string) (*model.MultisigGroup, error) {
	row := ex.QueryRowContext(ctx, `SELECT id, chain, owners, threshold, group_address, created_at FROM multisig_groups WHERE id = ?`, id)
	var g model.MultisigGroup
	var chain, ownersJSON, createdAt string
	if err := row.Scan(&g.ID, &chain, &ownersJSON, &g.Threshold, &g.GroupAddress, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, model.Wrap(model.ErrStorageUnavailable, "get_group failed", err)
	}
	g.Chain = model.Chain(chain)
	if err := json.Unmarshal([]byte(ownersJSON), &g.Owners); err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "unmarshal owners failed", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		g.CreatedAt = t
	}
	return &g, nil
}

func listGroups(ctx context.Context, ex sqlExecutor) ([]*model.MultisigGroup, error) {
	rows, err := ex.QueryContext(ctx, `SELECT id, chain, owners, threshold, group_address, created_at FROM multisig_groups`)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "list_groups failed", err)
	}
	defer rows.Close()
	var out []*model.MultisigGroup
	for rows.Next() {
		var g model.MultisigGroup
		var chain, ownersJSON, createdAt string
		if err := rows.Scan(&g.ID, &chain, &ownersJSON, &g.Threshold, &g.GroupAddress, &createdAt); err != nil {
			return nil, model.Wrap(model.ErrStorageUnavailable, "scan group failed", err)
		}
		g.Chain = model.Chain(chain)
		if err := json.Unmarshal([]byte(ownersJSON), &g.Owners); err != nil {
			return nil, model.Wrap(model.ErrStorageUnavailable, "unmarshal owners failed", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			g.CreatedAt = t
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}
