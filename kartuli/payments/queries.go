package payments

const orderColumns = `
	id, user_id, COALESCE(provider_order_id, ''), plan, amount, currency, status,
	redirect_url, created_at, updated_at, completed_at
`

const (
	queryCreate = `
		INSERT INTO payment_orders (id, user_id, plan, amount, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING` + orderColumns

	queryAttachProviderOrder = `
		UPDATE payment_orders
		SET provider_order_id = $1, redirect_url = $2, status = 'pending', updated_at = NOW()
		WHERE id = $3
	`

	queryFindByID = `
		SELECT` + orderColumns + `
		FROM payment_orders
		WHERE id = $1
	`

	queryFindByProviderOrderID = `
		SELECT` + orderColumns + `
		FROM payment_orders
		WHERE provider_order_id = $1
	`

	// completed orders are final
	queryMarkStatus = `
		UPDATE payment_orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status <> 'completed'
	`

	queryComplete = `
		UPDATE payment_orders
		SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status <> 'completed'
		RETURNING user_id, plan
	`

	queryUpgradeUser = `
		UPDATE users
		SET plan = $1, plan_updated_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`

	queryList = `
		SELECT` + orderColumns + `
		FROM payment_orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	queryListByUser = `
		SELECT` + orderColumns + `
		FROM payment_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	queryStats = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status IN ('created', 'pending')),
			COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0)::float8
		FROM payment_orders
	`
)
