// Package stages provides the simulated stage collaborators for the
// deployment pipeline: validation, repository creation, source push,
// remote build, and domain verification. Each is a pipeline.Executor
// with deterministic emissions and configurable delays, so the same
// registry shape works for demos (real timers) and tests (zero delays).
package stages

import (
	"time"

	"github.com/slipway-sh/slipway/pipeline"
)

// Stage identifiers, in pipeline order.
const (
	IDValidate = "validate"
	IDRepo     = "create-repo"
	IDPush     = "push"
	IDBuild    = "build"
	IDDomain   = "verify-domain"
)

// Options configures the simulated providers.
type Options struct {
	// Host is the hosting provider's apex domain; published URLs take
	// the form https://<project>.<Host>.
	Host string
	// Unit is the base delay between emissions. Zero makes every stage
	// resolve instantly.
	Unit time.Duration
	// MaxSourceKB caps the accepted source bundle size.
	MaxSourceKB int
	// FailStage, when set to a stage ID, makes that stage fail with a
	// canned provider error. Used for demos and failure-path testing.
	FailStage string
}

func (o Options) withDefaults() Options {
	if o.Host == "" {
		o.Host = "slipway.app"
	}
	if o.MaxSourceKB <= 0 {
		o.MaxSourceKB = 512
	}
	return o
}

// failReasons maps a stage ID to its injected failure message.
var failReasons = map[string]string{
	IDValidate: "source bundle rejected by analyzer",
	IDRepo:     "repository name already taken",
	IDPush:     "remote rejected ref update",
	IDBuild:    "remote build failed",
	IDDomain:   "domain verification timed out",
}

func injected(o Options, id string) string {
	if o.FailStage == id {
		return failReasons[id]
	}
	return ""
}

// Defaults builds the standard five-stage registry wired to the
// simulated providers.
func Defaults(o Options) (*pipeline.Registry, error) {
	o = o.withDefaults()
	return pipeline.NewRegistry(
		pipeline.StageDef{
			ID:       IDValidate,
			Label:    "Validating source",
			Executor: &ValidateExecutor{Unit: o.Unit, MaxSourceKB: o.MaxSourceKB, FailReason: injected(o, IDValidate)},
		},
		pipeline.StageDef{
			ID:       IDRepo,
			Label:    "Creating repository",
			Executor: &RepoExecutor{Host: o.Host, Unit: o.Unit, FailReason: injected(o, IDRepo)},
		},
		pipeline.StageDef{
			ID:       IDPush,
			Label:    "Pushing source",
			Executor: &PushExecutor{Unit: o.Unit, FailReason: injected(o, IDPush)},
		},
		pipeline.StageDef{
			ID:       IDBuild,
			Label:    "Building remotely",
			Executor: &BuildExecutor{Unit: o.Unit, FailReason: injected(o, IDBuild)},
		},
		pipeline.StageDef{
			ID:       IDDomain,
			Label:    "Verifying domain",
			Executor: &DomainExecutor{Host: o.Host, Unit: o.Unit, FailReason: injected(o, IDDomain)},
		},
	)
}
