package postgres

// SQL queries for analytics events and rollup documents

const (
	// querySaveEvent inserts a raw event.
	// ON CONFLICT DO NOTHING leaves RowsAffected at 0 for duplicates.
	querySaveEvent = `
		INSERT INTO analytics_events (
			id, event_type, user_id, is_anonymous, data, occurred_at,
			user_agent, referrer, page_path, session_id, browser, os, device_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`

	// queryRecentEvents fetches the newest events for an owner set.
	queryRecentEvents = `
		SELECT
			id, event_type, user_id, is_anonymous, data, occurred_at,
			user_agent, referrer, page_path, session_id, browser, os, device_type
		FROM analytics_events
		WHERE user_id = ANY($1)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`

	// queryIncrementUserSummary creates or bumps one user's rollup in a single statement.
	// $2 is the event kind, $3 the event time.
	queryIncrementUserSummary = `
		INSERT INTO user_analytics (
			user_id, counters, last_seen, total_events, created_at, last_updated
		)
		VALUES (
			$1,
			jsonb_build_object($2::text, 1),
			jsonb_build_object($2::text, $3::timestamptz),
			1, $3, $3
		)
		ON CONFLICT (user_id) DO UPDATE SET
			counters = user_analytics.counters || jsonb_build_object(
				$2::text, COALESCE((user_analytics.counters ->> $2::text)::bigint, 0) + 1
			),
			last_seen    = user_analytics.last_seen || jsonb_build_object($2::text, $3::timestamptz),
			total_events = user_analytics.total_events + 1,
			last_updated = EXCLUDED.last_updated
	`

	// queryIncrementProductSummary is the product counterpart of queryIncrementUserSummary.
	// The owning merchant is fixed by the first event; a non-empty name replaces the stored one.
	queryIncrementProductSummary = `
		INSERT INTO product_analytics (
			product_id, product_name, user_id, counters, last_seen,
			total_events, created_at, last_updated
		)
		VALUES (
			$1, $2, $3,
			jsonb_build_object($4::text, 1),
			jsonb_build_object($4::text, $5::timestamptz),
			1, $5, $5
		)
		ON CONFLICT (product_id) DO UPDATE SET
			product_name = COALESCE(NULLIF(EXCLUDED.product_name, ''), product_analytics.product_name),
			counters = product_analytics.counters || jsonb_build_object(
				$4::text, COALESCE((product_analytics.counters ->> $4::text)::bigint, 0) + 1
			),
			last_seen    = product_analytics.last_seen || jsonb_build_object($4::text, $5::timestamptz),
			total_events = product_analytics.total_events + 1,
			last_updated = EXCLUDED.last_updated
	`

	queryUserSummary = `
		SELECT user_id, counters, last_seen, total_events, created_at, last_updated
		FROM user_analytics
		WHERE user_id = $1
	`

	queryProductSummary = `
		SELECT product_id, product_name, user_id, counters, last_seen,
		       total_events, created_at, last_updated
		FROM product_analytics
		WHERE product_id = $1
	`

	// queryTopProducts ranks an owner set's products by product_view count.
	queryTopProducts = `
		SELECT product_id, product_name, user_id, counters, last_seen,
		       total_events, created_at, last_updated
		FROM product_analytics
		WHERE user_id = ANY($1)
		ORDER BY COALESCE((counters ->> 'product_view')::bigint, 0) DESC, product_id ASC
		LIMIT $2
	`
)
