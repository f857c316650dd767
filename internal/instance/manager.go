package instance

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/moguard/subctl/internal/config"
	"github.com/moguard/subctl/internal/envfile"
	"github.com/moguard/subctl/internal/errors"
	"github.com/moguard/subctl/internal/gitops"
	"github.com/moguard/subctl/internal/logging"
	"github.com/moguard/subctl/internal/pgadmin"
	"github.com/moguard/subctl/internal/systemd"
)

// AdminFactory opens a database administration connection. The manager
// connects lazily so commands that never touch the database (status, logs,
// start) work without the admin DSN configured.
type AdminFactory func() (pgadmin.Admin, error)

// Manager sequences lifecycle operations across the git client, the service
// supervisor, the database administrator, and the filesystem. Within an
// operation every external call is either required (the first failure aborts
// and is surfaced) or best-effort (the failure is recorded and the remaining
// steps still run); Remove is the only all-best-effort operation.
type Manager struct {
	cfg       *config.Config
	registry  *Registry
	git       gitops.Client
	sys       systemd.Manager
	openAdmin AdminFactory
	logger    *logging.Logger
}

// NewManager wires a manager from its collaborators.
func NewManager(cfg *config.Config, git gitops.Client, sys systemd.Manager, openAdmin AdminFactory, logger *logging.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		registry:  NewRegistry(cfg.Deploy.BaseDir, cfg.Deploy.Prefix),
		git:       git,
		sys:       sys,
		openAdmin: openAdmin,
		logger:    logger,
	}
}

// Registry exposes the instance registry for read-only commands.
func (m *Manager) Registry() *Registry {
	return m.registry
}

func (m *Manager) instance(name string) Instance {
	return Instance{Name: name, BaseDir: m.cfg.Deploy.BaseDir, Prefix: m.cfg.Deploy.Prefix}
}

// requireBranch verifies the branch exists on the remote before any local
// state is touched.
func (m *Manager) requireBranch(branch string) error {
	if strings.TrimSpace(branch) == "" {
		return errors.NewValidationError("branch cannot be empty").WithField("branch")
	}
	exists, err := m.git.RemoteBranchExists(branch)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewGitError(
			fmt.Sprintf("branch %q does not exist on the remote", branch),
			errors.ErrBranchNotFound).WithBranch(branch)
	}
	return nil
}

// CreateResult reports what a successful install produced.
type CreateResult struct {
	Instance    Instance
	EnvContents string
	WebhookHost string
}

// Create provisions a new instance: clone, database role and schema, env
// file, log file, and an enabled, started service unit. If review is
// non-nil it is called with the rendered env contents after the env file is
// written and before the service unit is registered, so the operator sees
// the configuration before anything starts. There is no rollback; on
// failure the returned error names the steps that completed so the operator
// can run remove to clear the partial state.
func (m *Manager) Create(ctx context.Context, name, branch string, review func(envContents string)) (*CreateResult, error) {
	log := m.logger.WithOperation("install").WithInstance(name).With("branch", branch)

	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.cfg.Deploy.BaseDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create base directory %s", m.cfg.Deploy.BaseDir)
	}

	lock, err := AcquireLock(m.cfg.Deploy.BaseDir, name)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	exists, err := m.registry.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewAlreadyExistsError("instance", name)
	}
	if err := m.requireBranch(branch); err != nil {
		return nil, err
	}

	inst := m.instance(name)
	var completed []string
	fail := func(step string, err error) error {
		log.Error("install step failed", "step", step, "error", err.Error())
		return createFailure(name, step, completed, err)
	}
	done := func(step string) {
		completed = append(completed, step)
		log.Info("install step completed", "step", step)
	}

	if err := m.git.Clone(branch, inst.Dir()); err != nil {
		return nil, fail("clone repository", err)
	}
	done("clone repository")

	password, err := NewPassword()
	if err != nil {
		return nil, fail("generate password", err)
	}
	jwtSecret, err := NewJWTSecret()
	if err != nil {
		return nil, fail("generate JWT secret", err)
	}

	admin, err := m.openAdmin()
	if err != nil {
		return nil, fail("connect to database server", err)
	}
	defer admin.Close()

	if err := admin.CreateRole(ctx, inst.DBUser(), password); err != nil {
		return nil, fail("create database role", err)
	}
	done("create database role")
	if err := admin.CreateDatabase(ctx, inst.Database(), inst.DBUser()); err != nil {
		return nil, fail("create database", err)
	}
	done("create database")
	if err := admin.GrantAll(ctx, inst.Database(), inst.DBUser()); err != nil {
		return nil, fail("grant privileges", err)
	}
	done("grant privileges")

	template, err := envfile.LoadTemplate(m.cfg.Paths.TemplatePath)
	if err != nil {
		return nil, fail("load env template", err)
	}
	webhookHost := inst.WebhookHost(m.cfg.Webhook.Domain)
	rendered := envfile.Render(template, envfile.Values{
		envfile.KeyDatabaseName:     inst.Database(),
		envfile.KeyDatabaseUsername: inst.DBUser(),
		envfile.KeyDatabasePassword: password,
		envfile.KeyDatabaseHost:     m.cfg.Database.Host,
		envfile.KeyDatabasePort:     strconv.Itoa(m.cfg.Database.Port),
		envfile.KeyWebhookHost:      webhookHost,
		envfile.KeyJWTSecret:        jwtSecret,
	})
	if err := envfile.Write(inst.EnvPath(), rendered); err != nil {
		return nil, fail("write env file", err)
	}
	done("write env file")

	if review != nil {
		review(rendered)
	}

	if err := touchLogFile(inst.LogPath()); err != nil {
		return nil, fail("create log file", err)
	}
	done("create log file")

	def := systemd.UnitDefinition{
		Description: fmt.Sprintf("%s subscription instance %s", m.cfg.Deploy.Prefix, name),
		WorkingDir:  inst.Dir(),
		ExecStart:   m.cfg.Deploy.StartCommand,
		User:        m.cfg.Deploy.ServiceUser,
		LogPath:     inst.LogPath(),
	}
	if err := m.sys.WriteUnit(inst.Unit(), def); err != nil {
		return nil, fail("write service unit", err)
	}
	done("write service unit")
	if err := m.sys.DaemonReload(); err != nil {
		return nil, fail("reload service manager", err)
	}
	if err := m.sys.Enable(inst.Unit()); err != nil {
		return nil, fail("enable service", err)
	}
	done("enable service")
	if err := m.sys.Start(inst.Unit()); err != nil {
		return nil, fail("start service", err)
	}
	done("start service")

	log.Info("instance installed", "webhook_host", webhookHost)
	return &CreateResult{Instance: inst, EnvContents: rendered, WebhookHost: webhookHost}, nil
}

func createFailure(name, step string, completed []string, err error) error {
	if len(completed) == 0 {
		return errors.Wrapf(err, "install of %s failed at %q", name, step)
	}
	return errors.Wrapf(err,
		"install of %s failed at %q after completing %s; run 'subctl remove %s' to clean up the partial state",
		name, step, strings.Join(completed, ", "), name)
}

func touchLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to create log file %s", path)
	}
	return f.Close()
}

// Update stops the service, forces the working tree onto the remote tip of
// branch, and starts the service again. Every step is required; a git
// failure leaves the service stopped, which the surfaced error reports.
func (m *Manager) Update(ctx context.Context, name, branch string) error {
	lock, err := AcquireLock(m.cfg.Deploy.BaseDir, name)
	if err != nil {
		return err
	}
	defer lock.Release()

	inst, err := m.registry.Get(name)
	if err != nil {
		return err
	}
	if err := m.requireBranch(branch); err != nil {
		return err
	}
	return m.updateCode(inst, branch)
}

// updateCode runs the stop / sync / start sequence shared by Update and
// UpdateAll. Branch existence has already been checked.
func (m *Manager) updateCode(inst Instance, branch string) error {
	log := m.logger.WithOperation("update").WithInstance(inst.Name)

	if err := m.sys.Stop(inst.Unit()); err != nil {
		return err
	}
	steps := []struct {
		name string
		run  func() error
	}{
		{"discard local changes", func() error { return m.git.DiscardChanges(inst.Dir()) }},
		{"fetch remote refs", func() error { return m.git.FetchAll(inst.Dir()) }},
		{"switch branch", func() error { return m.git.Checkout(inst.Dir(), branch) }},
		{"reset to remote tip", func() error { return m.git.ResetToRemote(inst.Dir(), branch) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			log.Error("update step failed", "step", step.name, "error", err.Error())
			return errors.Wrapf(err,
				"update of %s failed at %q; the service has been left stopped", inst.Name, step.name)
		}
	}
	if err := m.sys.Start(inst.Unit()); err != nil {
		return err
	}
	log.Info("instance updated", "branch", branch)
	return nil
}

// StepResult records the outcome of one teardown step.
type StepResult struct {
	Step string
	Err  error
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// Summary is the itemized outcome of a Remove.
type Summary []StepResult

// Failed returns the number of steps that failed.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Remove tears down every resource of an instance. Each step is
// best-effort: a failure is recorded in the summary and the remaining steps
// still run, to maximize how much actually gets cleaned up. Remove accepts
// instances in partial states left behind by a failed install.
func (m *Manager) Remove(ctx context.Context, name string) (Summary, error) {
	log := m.logger.WithOperation("remove").WithInstance(name)

	if err := ValidateName(name); err != nil {
		return nil, err
	}
	lock, err := AcquireLock(m.cfg.Deploy.BaseDir, name)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	inst := m.instance(name)
	exists, err := m.registry.Exists(name)
	if err != nil {
		return nil, err
	}
	if !exists && !m.sys.UnitExists(inst.Unit()) {
		return nil, errors.NewNotFoundError("instance", name)
	}

	var summary Summary
	record := func(step string, err error) {
		summary = append(summary, StepResult{Step: step, Err: err})
		if err != nil {
			log.Warn("remove step failed", "step", step, "error", err.Error())
		} else {
			log.Info("remove step completed", "step", step)
		}
	}

	record("stop service", m.sys.Stop(inst.Unit()))
	record("disable service", m.sys.Disable(inst.Unit()))
	record("remove service unit", m.sys.RemoveUnit(inst.Unit()))
	record("reload service manager", m.sys.DaemonReload())

	admin, err := m.openAdmin()
	if err != nil {
		record("connect to database server", err)
		record("drop database", errors.Wrap(err, "skipped"))
		record("drop database role", errors.Wrap(err, "skipped"))
	} else {
		record("terminate database connections", admin.TerminateConnections(ctx, inst.Database()))
		record("drop database", admin.DropDatabase(ctx, inst.Database()))
		record("drop database role", admin.DropRole(ctx, inst.DBUser()))
		admin.Close()
	}

	record("remove instance directory", removeDir(inst.Dir()))

	log.Info("instance removed", "failed_steps", summary.Failed())
	return summary, nil
}

func removeDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "failed to remove %s", dir)
	}
	return nil
}

// Status reports whether the instance's service is active.
func (m *Manager) Status(name string) (bool, error) {
	inst, err := m.registry.Get(name)
	if err != nil {
		return false, err
	}
	return m.sys.IsActive(inst.Unit()), nil
}

// InstanceStatus pairs an instance with its service state for listings.
type InstanceStatus struct {
	Instance Instance
	Active   bool
}

// StatusAll returns the state of every registered instance in sorted order.
func (m *Manager) StatusAll() ([]InstanceStatus, error) {
	instances, err := m.registry.List()
	if err != nil {
		return nil, err
	}
	statuses := make([]InstanceStatus, 0, len(instances))
	for _, inst := range instances {
		statuses = append(statuses, InstanceStatus{
			Instance: inst,
			Active:   m.sys.IsActive(inst.Unit()),
		})
	}
	return statuses, nil
}

// Start starts the instance's service.
func (m *Manager) Start(name string) error {
	return m.serviceOp(name, m.sys.Start)
}

// Stop stops the instance's service.
func (m *Manager) Stop(name string) error {
	return m.serviceOp(name, m.sys.Stop)
}

// Restart stops then starts the instance's service.
func (m *Manager) Restart(name string) error {
	return m.serviceOp(name, func(unit string) error {
		if err := m.sys.Stop(unit); err != nil {
			return err
		}
		return m.sys.Start(unit)
	})
}

func (m *Manager) serviceOp(name string, op func(unit string) error) error {
	inst, err := m.registry.Get(name)
	if err != nil {
		return err
	}
	if !m.sys.UnitExists(inst.Unit()) {
		return errors.NewServiceError(
			fmt.Sprintf("no service unit registered for instance %s", name),
			errors.ErrUnitNotFound).WithUnit(inst.Unit())
	}
	return op(inst.Unit())
}

// Import replaces the instance's database contents with the given SQL file.
// The database is dropped and recreated with its original owner, privileges
// are regranted, and the file is executed as the instance's database user.
// The service is stopped for the duration and restarted only if it had been
// running. Destructive: the prior contents are not backed up.
func (m *Manager) Import(ctx context.Context, name, sqlPath string) error {
	log := m.logger.WithOperation("import").WithInstance(name)

	lock, err := AcquireLock(m.cfg.Deploy.BaseDir, name)
	if err != nil {
		return err
	}
	defer lock.Release()

	inst, err := m.registry.Get(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(sqlPath); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("SQL file", sqlPath).WithCause(err)
		}
		return errors.Wrapf(err, "failed to check SQL file %s", sqlPath)
	}

	vars, err := envfile.Load(inst.EnvPath())
	if err != nil {
		return err
	}
	dbName, dbUser, dbPassword, dbHost, dbPortStr, err := envfile.DatabaseValues(vars)
	if err != nil {
		return err
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return errors.NewValidationError("env file has a non-numeric database port").
			WithField(envfile.KeyDatabasePort).
			WithValue(dbPortStr).
			WithCause(err)
	}

	wasActive := m.sys.IsActive(inst.Unit())
	if wasActive {
		if err := m.sys.Stop(inst.Unit()); err != nil {
			return err
		}
	}

	admin, err := m.openAdmin()
	if err != nil {
		return err
	}
	defer admin.Close()

	if err := admin.TerminateConnections(ctx, dbName); err != nil {
		return err
	}
	if err := admin.DropDatabase(ctx, dbName); err != nil {
		return err
	}
	if err := admin.CreateDatabase(ctx, dbName, dbUser); err != nil {
		return err
	}
	if err := admin.GrantAll(ctx, dbName, dbUser); err != nil {
		return err
	}

	creds := pgadmin.Credentials{
		Host:     dbHost,
		Port:     dbPort,
		Database: dbName,
		User:     dbUser,
		Password: dbPassword,
	}
	if err := admin.ExecFileAs(ctx, creds, sqlPath); err != nil {
		return err
	}

	if wasActive {
		if err := m.sys.Start(inst.Unit()); err != nil {
			return err
		}
	}
	log.Info("database imported", "file", sqlPath, "restarted", wasActive)
	return nil
}

// UpdateAllResult reports which instances a batch update touched.
type UpdateAllResult struct {
	Updated []string
	Skipped []string
}

// UpdateAll updates every instance whose service is currently active, in
// sorted name order. Inactive instances are skipped. The first failing
// instance aborts the batch; the partial result reports what was already
// updated.
func (m *Manager) UpdateAll(ctx context.Context, branch string) (*UpdateAllResult, error) {
	log := m.logger.WithOperation("update-all")

	if _, err := os.Stat(m.cfg.Deploy.BaseDir); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("base directory", m.cfg.Deploy.BaseDir).
				WithCause(err)
		}
		return nil, errors.Wrapf(err, "failed to check base directory %s", m.cfg.Deploy.BaseDir)
	}
	if err := m.requireBranch(branch); err != nil {
		return nil, err
	}

	instances, err := m.registry.List()
	if err != nil {
		return nil, err
	}

	result := &UpdateAllResult{}
	for _, inst := range instances {
		if !m.sys.IsActive(inst.Unit()) {
			log.Info("skipping inactive instance", "instance", inst.Name)
			result.Skipped = append(result.Skipped, inst.Name)
			continue
		}
		if err := m.updateOne(inst, branch); err != nil {
			return result, errors.Wrapf(err, "batch update aborted at instance %s", inst.Name)
		}
		result.Updated = append(result.Updated, inst.Name)
	}
	return result, nil
}

func (m *Manager) updateOne(inst Instance, branch string) error {
	lock, err := AcquireLock(m.cfg.Deploy.BaseDir, inst.Name)
	if err != nil {
		return err
	}
	defer lock.Release()
	return m.updateCode(inst, branch)
}
