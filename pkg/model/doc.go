// Package model defines the request, response and row types of the
// restoration tracker.
//
// # Core Models
//
//   - SystemUser: a registered user with its system roles
//   - AdministrativeActivity: an access request and its review status
//   - ProjectRecord, ProjectView: a project row and its assembled sections
//   - Participant: a user's role on a project
//   - Attachment: a file stored in the object store
//   - TreatmentUnit: one feature of a treatment upload
//   - Draft: an unsaved project form
//
// # Database Schema
//
// The key tables, all created by the migrations under db/migrations:
//
//   - system_user, system_user_role, system_role
//   - administrative_activity
//   - project and its section tables (project_contact, permit, project_funding_source, ...)
//   - project_participation, project_role
//   - project_attachment
//   - treatment_unit, treatment
//   - webform_draft
package model
