package users

const userColumns = `
	id, email, name, avatar_url, provider, COALESCE(provider_id, ''), COALESCE(password_hash, ''),
	plan, is_admin, plan_updated_at, created_at, updated_at
`

const (
	queryFindOrCreateByProvider = `
		INSERT INTO users (provider, provider_id, email, name, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email)
		DO UPDATE SET
			name = CASE WHEN users.name = '' THEN EXCLUDED.name ELSE users.name END,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING` + userColumns

	queryCreateWithPassword = `
		INSERT INTO users (provider, email, name, password_hash)
		VALUES ('credentials', $1, $2, $3)
		RETURNING` + userColumns

	queryFindByID = `
		SELECT` + userColumns + `
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT` + userColumns + `
		FROM users
		WHERE email = $1
	`

	queryGetPlan = `
		SELECT plan FROM users WHERE id = $1
	`

	queryUpdatePlan = `
		UPDATE users
		SET plan = $1, plan_updated_at = NOW(), updated_at = NOW()
		WHERE id = $2
		RETURNING` + userColumns

	queryList = `
		SELECT` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	queryCountByPlan = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE plan = 'FREE'),
			COUNT(*) FILTER (WHERE plan = 'PREMIUM')
		FROM users
	`
)
