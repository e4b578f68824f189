package orders

const (
	querySchema = `
		DO $$ BEGIN
			CREATE TYPE order_status AS ENUM ('pending', 'processing', 'shipped', 'delivered', 'cancelled');
		EXCEPTION
			WHEN duplicate_object THEN NULL;
		END $$;

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_by TEXT NOT NULL,
			total_price NUMERIC(10, 2) NOT NULL CHECK (total_price > 0),
			status order_status NOT NULL DEFAULT 'pending',
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			shipping_address TEXT NOT NULL,
			billing_address TEXT NOT NULL,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS orders_created_by_idx ON orders (created_by, created_at DESC);
	`

	queryCreate = `
		INSERT INTO orders (
			created_by, total_price, status, customer_name, customer_email, shipping_address, billing_address, is_paid, paid_at
		)
		VALUES ($1, $2, $3::order_status, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
		RETURNING id, created_by, total_price::float8, status::text, customer_name, customer_email, shipping_address, billing_address, is_paid, paid_at, created_at, updated_at
	`

	queryCount = `
		SELECT COUNT(*)
		FROM orders
		WHERE ($1 = '' OR created_by = $1)
		  AND ($2 = '' OR status = $2::order_status)
	`

	queryList = `
		SELECT id, created_by, total_price::float8, status::text, customer_name, customer_email, shipping_address, billing_address, is_paid, paid_at, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR created_by = $1)
		  AND ($2 = '' OR status = $2::order_status)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	queryGet = `
		SELECT id, created_by, total_price::float8, status::text, customer_name, customer_email, shipping_address, billing_address, is_paid, paid_at, created_at, updated_at
		FROM orders
		WHERE id = $1 AND ($2 = '' OR created_by = $2)
	`

	queryUpdate = `
		UPDATE orders
		SET total_price = COALESCE($1, total_price),
		    status = COALESCE($2::order_status, status),
		    customer_name = COALESCE($3, customer_name),
		    customer_email = COALESCE($4, customer_email),
		    shipping_address = COALESCE($5, shipping_address),
		    billing_address = COALESCE($6, billing_address),
		    is_paid = COALESCE($7, is_paid),
		    paid_at = CASE
		        WHEN $8::timestamptz IS NOT NULL THEN $8::timestamptz
		        WHEN $7 = TRUE AND paid_at IS NULL THEN NOW()
		        ELSE paid_at
		    END,
		    updated_at = NOW()
		WHERE id = $9 AND ($10 = '' OR created_by = $10)
		RETURNING id, created_by, total_price::float8, status::text, customer_name, customer_email, shipping_address, billing_address, is_paid, paid_at, created_at, updated_at
	`

	queryDelete = `
		DELETE FROM orders
		WHERE id = $1 AND ($2 = '' OR created_by = $2)
	`
)
