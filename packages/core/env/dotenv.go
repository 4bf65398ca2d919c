package env

import (
	"errors"
	"os"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/joho/godotenv"
)

// LoadDotEnv parses a .env file and returns its key-value pairs. Values are
// never exported to the process environment; they are layered under the
// active environment's variables.
func LoadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, errdef.New(errdef.CodeDocumentIO, "env file %s not found", path).WithSubject(path)
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeDocumentIO, err, "reading env file %s", path).WithSubject(path)
	}
	return vars, nil
}
