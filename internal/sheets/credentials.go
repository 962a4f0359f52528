package sheets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrCredentialsMissing means the service-account file is absent or empty.
var ErrCredentialsMissing = errors.New("sheets credentials missing")

// LoadCredentials reads the service-account JSON at path.
func LoadCredentials(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCredentialsMissing, path)
	}
	return data, nil
}
