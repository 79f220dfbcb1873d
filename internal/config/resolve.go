package config

import (
	"fmt"
)

// Options are the raw command-line inputs before resolution.
type Options struct {
	Group            string
	Storage          StorageKind   // empty when --storage omitted
	Provision        ProvisionKind // empty when --provision omitted
	DisableSharedKey bool
	Location         string
	UniqueID         string // normally empty; pinned in tests
}

// UseCase is one (storage, provisioning) combination selected for a run.
type UseCase struct {
	Storage   StorageKind
	Provision ProvisionKind
}

// allUseCases is the fixed cross product in canonical order.
var allUseCases = []UseCase{
	{StorageBlob, ProvisionPersistent},
	{StorageBlob, ProvisionDynamic},
	{StorageFile, ProvisionPersistent},
	{StorageFile, ProvisionDynamic},
}

// Name returns the short case label used in summaries, e.g. "Blob-Static".
func (u UseCase) Name() string {
	p := "Static"
	if u.Provision == ProvisionDynamic {
		p = "Dynamic"
	}
	return fmt.Sprintf("%s-%s", u.Storage, p)
}

// Number returns the conventional use-case number (1-4).
func (u UseCase) Number() int {
	for i, c := range allUseCases {
		if c == u {
			return i + 1
		}
	}
	return 0
}

// Description returns the long label used for resource group tags.
func (u UseCase) Description() string {
	storage := "Blob Storage"
	if u.Storage == StorageFile {
		storage = "File Storage"
	}
	provision := "Static"
	if u.Provision == ProvisionDynamic {
		provision = "Dynamic"
	}
	return fmt.Sprintf("%s with %s Provisioning", storage, provision)
}

// Plan is the resolved shape of a run: the base configuration plus the use
// cases it expands into.
type Plan struct {
	Base  *Config
	Cases []UseCase

	// SingleCase is true when both dimensions were pinned (or forced by
	// --disable-shared-key) and the run executes the strict linear step
	// sequence instead of the multi-case loop.
	SingleCase bool
}

// Resolve validates the raw options and expands them into a Plan.
//
// Validation failures (conflicting flags with --disable-shared-key) are
// returned before any provisioning can start. When --disable-shared-key is
// set the only supported combination, Blob with static provisioning, is
// forced and multi-case mode is rejected.
func Resolve(opts Options) (*Plan, error) {
	storage := opts.Storage
	provision := opts.Provision

	if opts.DisableSharedKey {
		if storage != "" && storage != StorageBlob {
			return nil, fmt.Errorf("--disable-shared-key supports only Blob storage, not %s", storage)
		}
		if provision != "" && provision != ProvisionPersistent {
			return nil, fmt.Errorf("--disable-shared-key supports only static (Persistent) provisioning, not %s", provision)
		}
		storage = StorageBlob
		provision = ProvisionPersistent
	}

	allowSharedKey := !opts.DisableSharedKey

	cases := make([]UseCase, 0, len(allUseCases))
	for _, c := range allUseCases {
		if storage != "" && c.Storage != storage {
			continue
		}
		if provision != "" && c.Provision != provision {
			continue
		}
		cases = append(cases, c)
	}

	// The base config drives shared infrastructure. In multi-case mode it
	// pins Blob+Persistent so the shared storage account is created with the
	// broadest settings; the per-case configs narrow from there.
	baseStorage := storage
	baseProvision := provision
	if baseStorage == "" {
		baseStorage = StorageBlob
	}
	if baseProvision == "" {
		baseProvision = ProvisionPersistent
	}

	base := NewConfig(Params{
		Group:                opts.Group,
		Storage:              baseStorage,
		Provision:            baseProvision,
		Location:             opts.Location,
		UniqueID:             opts.UniqueID,
		AllowSharedKeyAccess: &allowSharedKey,
	})

	return &Plan{
		Base:       base,
		Cases:      cases,
		SingleCase: len(cases) == 1,
	}, nil
}

// CaseConfig derives the per-case configuration from the plan's base. The
// resource group, storage account name, unique identifier and shared-key
// policy are inherited so all cases target the shared infrastructure.
func (p *Plan) CaseConfig(u UseCase) *Config {
	allow := p.Base.AllowSharedKeyAccess
	return NewConfig(Params{
		Group:                p.Base.Group,
		Storage:              u.Storage,
		Provision:            u.Provision,
		Location:             p.Base.Location,
		UniqueID:             p.Base.UniqueID,
		ResourceGroup:        p.Base.ResourceGroup,
		StorageAccount:       p.Base.StorageAccount,
		AllowSharedKeyAccess: &allow,
	})
}

// NeedsStorageAccount reports whether any selected case uses static
// provisioning and therefore needs the shared storage account up front.
func (p *Plan) NeedsStorageAccount() bool {
	for _, c := range p.Cases {
		if c.Provision == ProvisionPersistent {
			return true
		}
	}
	return false
}

// TagArgs renders the resource-group tags for the selected cases as
// `key=value` arguments in stable order, with the shared-key marker last.
func (p *Plan) TagArgs() []string {
	args := make([]string, 0, len(p.Cases)+1)
	for _, c := range p.Cases {
		args = append(args, fmt.Sprintf("UseCase%d=%s", c.Number(), c.Description()))
	}
	if !p.Base.AllowSharedKeyAccess {
		args = append(args, "KeyAccess=disabled")
	}
	return args
}
