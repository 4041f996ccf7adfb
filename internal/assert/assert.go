package assert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert is a wrapper around assert.Assertions and testing.T
type Assert struct {
	*assert.Assertions
	T *testing.T
}

// New creates a new Assert object
func New(t *testing.T) *Assert {
	return &Assert{
		Assertions: assert.New(t),
		T:          t,
	}
}

// EqualToJSONFixture marshals the result to JSON and compares it with the content of a fixture file.
// The fixture path is derived from the test name: testdata/fixtures/<a.T.Name()>_<fixtureName>.json
func (a *Assert) EqualToJSONFixture(fixtureName string, result any) {
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	a.NoError(err, "Failed to marshal result to JSON")

	a.equalToFixture(fixtureName+".json", string(resultJSON))
}

// EqualToTextFixture compares result byte for byte with the fixture
// testdata/fixtures/<a.T.Name()>_<fixtureName>.
func (a *Assert) EqualToTextFixture(fixtureName string, result string) {
	a.equalToFixture(fixtureName, result)
}

// equalToFixture compares result with a fixture file. If GEN_FIXTURE=true is
// set, it writes result to the fixture file instead and passes.
func (a *Assert) equalToFixture(fileName string, result string) {
	a.T.Helper()

	fixturePath := filepath.Join("testdata", "fixtures", fmt.Sprintf("%s_%s", a.T.Name(), fileName))

	if os.Getenv("GEN_FIXTURE") == "true" {
		err := os.MkdirAll(filepath.Dir(fixturePath), 0755)
		a.NoError(err, "Failed to create fixture directory")
		err = os.WriteFile(fixturePath, []byte(result), 0644)
		a.NoError(err, "Failed to write fixture file")
		return
	}

	expected, err := os.ReadFile(fixturePath)
	a.NoError(err, "Failed to read fixture file")

	a.Equal(string(expected), result, "Result does not match fixture %s", fixturePath)
}
