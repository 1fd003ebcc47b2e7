// Package registry is lode's local package registry and installation
// engine: it discovers the packages available on a machine, installs new
// package versions from downloaded archives, removes installed packages
// safely, and resolves name/version queries for the dependency solver.
//
// Components:
//   - Manager: owns all repositories, the discovery map and temporary
//     packages; entry point for every operation
//   - Repository: a named local package source (user or system) with scan
//     roots and explicit local registrations
//   - Journal: the creation-order record of filesystem actions taken
//     during install, replayed to drive safe uninstall
//
// Durable state is the filesystem plus two kinds of JSON sidecar files:
// per-repository local-packages.json and per-package journal.json. There is
// no database, no file locking against concurrent lode processes, and no
// transactional install; the journal plus the alien-files safety gate keep
// removal from ever destroying data lode did not create.
//
// Example Usage:
//
//	m := registry.New(registry.Settings{
//		UserRoot:   "/home/me/.lode",
//		SystemRoot: "/var/lib/lode",
//	}, logger)
//	pkg := m.GetBest("vecmath", version.MustParseConstraint("^1.2"))
package registry
