package sqlite

// migrations are applied in order; the version is the 1-based index.
var migrations = [][]string{
	{
		`CREATE TABLE forms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE form_fields (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			form_id INTEGER NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			placeholder TEXT NOT NULL DEFAULT '',
			is_required BOOLEAN NOT NULL DEFAULT FALSE,
			order_index INTEGER NOT NULL,
			note TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_form_fields_form ON form_fields(form_id, order_index)`,
	},
	// Options moved inline as JSON.
	{
		`ALTER TABLE form_fields ADD COLUMN options TEXT`,
	},
}
