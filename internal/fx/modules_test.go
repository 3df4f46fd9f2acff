package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
)

func TestModuleGraph(t *testing.T) {
	assert.NoError(t, fx.ValidateApp(Module, fx.NopLogger))
}
