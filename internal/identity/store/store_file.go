package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// FileStore keeps one DID-document JSON file and one plain-text fragment file
// per actor role under a data directory.
type FileStore struct {
	dir string
}

func NewFile(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) didPath(role id.ActorRole) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_did.json", role))
}

func (s *FileStore) fragmentPath(role id.ActorRole) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_fragment.txt", role))
}

func (s *FileStore) Load(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error) {
	didJSON, err := os.ReadFile(s.didPath(role))
	if errors.Is(err, os.ErrNotExist) {
		return domain.ActorIdentity{}, dErrors.Newf(dErrors.CodeNotFound, "no identity persisted for %s", role)
	}
	if err != nil {
		return domain.ActorIdentity{}, dErrors.Wrap(err, dErrors.CodeStorage, "read DID document file")
	}

	fragmentRaw, err := os.ReadFile(s.fragmentPath(role))
	if err != nil {
		return domain.ActorIdentity{}, dErrors.Wrap(err, dErrors.CodeStorage, "read fragment file")
	}

	fragment := strings.TrimSpace(string(fragmentRaw))
	if fragment == "" {
		return domain.ActorIdentity{}, dErrors.Newf(dErrors.CodeStorage, "fragment file for %s is empty", role)
	}

	var doc domain.Document
	if err := json.Unmarshal(didJSON, &doc); err != nil {
		return domain.ActorIdentity{}, dErrors.Wrap(err, dErrors.CodeStorage, "DID document file is not valid JSON")
	}
	if doc.ID.IsZero() {
		return domain.ActorIdentity{}, dErrors.Newf(dErrors.CodeStorage, "DID document for %s has no id", role)
	}

	return domain.ActorIdentity{Document: doc, Fragment: fragment}, nil
}

func (s *FileStore) Save(ctx context.Context, role id.ActorRole, identity domain.ActorIdentity) error {
	didJSON, err := json.MarshalIndent(identity.Document, "", "  ")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "encode DID document")
	}

	if err := os.WriteFile(s.didPath(role), didJSON, 0o600); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "write DID document file")
	}
	if err := os.WriteFile(s.fragmentPath(role), []byte(identity.Fragment), 0o600); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "write fragment file")
	}
	return nil
}

func (s *FileStore) Exists(ctx context.Context, role id.ActorRole) (bool, error) {
	_, err := os.Stat(s.didPath(role))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStorage, "stat DID document file")
	}
	return true, nil
}

var _ Store = (*FileStore)(nil)
