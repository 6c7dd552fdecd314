// Package core provides the business logic of the community dashboard.
//
// This package holds all domain logic independent of HTTP or storage. Web
// handlers call [Service]; persistence sits behind the [Store] interface,
// implemented by the postgres and memory packages.
//
// # Task List Import
//
// An admin uploads a .csv or .xlsx task list. The flow is:
//
//  1. [ReadRows] parses the file into ordered [ImportRow] values, skipping
//     the UTF-8 BOM, replacing invalid UTF-8, and lowercasing headers
//  2. [Importer.Import] checks the batch (non-empty, every column in
//     [RequiredImportColumns] present) and then each row in order
//  3. each accepted row is persisted immediately; a rejected row carries an
//     "error" column naming the first failing check
//
// Rows are independent: a rejection never affects another row, and rows
// persisted before a cancellation stay persisted. [ImportLimiter] bounds how
// many imports run at once.
//
// # Dashboard
//
// The rest of [Service] covers task CRUD and CSV export, the campus lead's
// college details and karma-ranked roster, and the admin user listing and
// editor. Organization links render through [NewOrganizationView], which
// picks a view by organization type.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - IMP001-IMP006: Import errors (no file, empty, missing column, busy)
//   - TSK001, USR001: Uniqueness errors on tasks and users
//   - REQ001-REQ005: Request errors (validation, not found, timeouts)
//   - AUTH001-AUTH002: Authentication and authorization
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
package core
