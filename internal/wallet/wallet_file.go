package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// FileStore keeps one plain-text JWT file per role and artifact kind under a
// data directory: <role>_vc.jwt and <role>_vp.jwt.
type FileStore struct {
	dir string
}

func NewFile(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) credentialPath(role id.ActorRole) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_vc.jwt", role))
}

func (s *FileStore) presentationPath(role id.ActorRole) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_vp.jwt", role))
}

func (s *FileStore) SaveCredential(ctx context.Context, role id.ActorRole, token string) error {
	return s.write(s.credentialPath(role), token, "credential")
}

func (s *FileStore) LoadCredential(ctx context.Context, role id.ActorRole) (string, error) {
	return s.read(s.credentialPath(role), role, "credential")
}

func (s *FileStore) SavePresentation(ctx context.Context, role id.ActorRole, token string) error {
	return s.write(s.presentationPath(role), token, "presentation")
}

func (s *FileStore) LoadPresentation(ctx context.Context, role id.ActorRole) (string, error) {
	return s.read(s.presentationPath(role), role, "presentation")
}

func (s *FileStore) write(path, token, kind string) error {
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "write "+kind+" file")
	}
	return nil
}

func (s *FileStore) read(path string, role id.ActorRole, kind string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", dErrors.Newf(dErrors.CodeStorage, "no %s stored for %s", kind, role)
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "read "+kind+" file")
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", dErrors.Newf(dErrors.CodeStorage, "%s file for %s is empty", kind, role)
	}
	return token, nil
}

var _ Store = (*FileStore)(nil)
