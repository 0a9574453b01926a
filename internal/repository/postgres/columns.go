package postgres

import "strings"

var (
	userCols     = []string{"id", "name", "email", "password_hash", "role", "phone", "birth_date", "document_type", "document_number", "gender", "address", "created_at", "updated_at"}
	doctorCols   = []string{"id", "user_id", "specialty", "license_number", "is_available", "bio", "created_at", "updated_at"}
	guardianCols = []string{"id", "user_id", "relationship", "relationship_notes", "is_primary_contact", "created_at", "updated_at"}
	patientCols  = []string{"id", "user_id", "guardian_id", "doctor_id", "blood_type", "allergies", "medical_history", "current_medications", "emergency_contact_name", "emergency_contact_phone", "created_at", "updated_at"}
)

// columns qualifies cols with alias.
func columns(alias string, cols []string) string {
	if alias == "" {
		return strings.Join(cols, ", ")
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}

// nested selects cols under alias as "prefix.col" so sqlx fills a nested struct.
func nested(alias, prefix string, cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c + ` AS "` + prefix + "." + c + `"`
	}
	return strings.Join(out, ", ")
}

func doctorColumns(alias string) string   { return columns(alias, doctorCols) }
func guardianColumns(alias string) string { return columns(alias, guardianCols) }
func patientColumns(alias string) string  { return columns(alias, patientCols) }

// search matches a case-insensitive substring.
func search(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

var (
	appointmentCols  = []string{"id", "patient_id", "doctor_id", "created_by", "appointment_date", "duration_minutes", "ends_at", "status", "type", "reason", "notes", "diagnosis", "created_at", "updated_at"}
	homeVisitCols    = []string{"id", "patient_id", "doctor_id", "visit_date", "estimated_duration_minutes", "ends_at", "status", "address", "reason", "notes", "findings", "created_at", "updated_at"}
	medicationCols   = []string{"id", "name", "description", "dosage_info", "side_effects", "contraindications", "requires_prescription", "is_active", "created_at", "updated_at"}
	prescriptionCols = []string{"id", "patient_id", "doctor_id", "medication_id", "appointment_id", "dosage", "frequency", "duration_days", "instructions", "start_date", "end_date", "is_active", "created_at", "updated_at"}
	emergencyCols    = []string{"id", "patient_id", "guardian_id", "doctor_id", "description", "location", "status", "priority", "response_notes", "acknowledged_at", "resolved_at", "created_at", "updated_at"}
	auditCols        = []string{"id", "user_id", "action", "entity_type", "entity_id", "changes", "ip_address", "user_agent", "created_at"}
)

// partiesJoin joins the patient and doctor display names of a booking-shaped row.
func partiesJoin(alias string) string {
	return " JOIN patients p ON p.id = " + alias + ".patient_id" +
		" JOIN users pu ON pu.id = p.user_id" +
		" JOIN doctors d ON d.id = " + alias + ".doctor_id" +
		" JOIN users du ON du.id = d.user_id"
}

// placeholders renders n comma separated ? markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
