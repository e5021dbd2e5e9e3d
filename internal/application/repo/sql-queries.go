package repo

// EVENTS
const eventColumns = `
    e.id::text, e.family_id::text, e.title, e.description, e.location, e.start_time, e.end_time,
    e.assigned_to_id::text, e.event_category_id::text, e.created_by_id::text,
    e.is_recurring, e.recurrence_rule, e.recurring_end_date, e.created_at, e.updated_at,
    c.name, c.color, a.display_name, cr.display_name
FROM events e
LEFT JOIN event_categories c ON c.id = e.event_category_id
LEFT JOIN family_members a ON a.user_id = e.assigned_to_id
LEFT JOIN family_members cr ON cr.user_id = e.created_by_id`

const createEvent = `INSERT INTO events (
                    id, family_id, title, description, location, start_time, end_time,
                    assigned_to_id, event_category_id, created_by_id,
                    is_recurring, recurrence_rule, recurring_end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO NOTHING
RETURNING created_at, updated_at;`

const getEventByID = `SELECT ` + eventColumns + `
WHERE e.id = $1`

// $3/$4 - границы окна, NULL если не заданы.
// Повторяющиеся события отсекаются только по recurring_end_date, остальное решает разворачивание.
const findEventsVisibleTo = `SELECT ` + eventColumns + `
WHERE (e.created_by_id = ANY($1::text[]::uuid[]) OR e.assigned_to_id = ANY($2::text[]::uuid[]))
  AND ($3::timestamptz IS NULL OR CASE
        WHEN e.is_recurring THEN e.recurring_end_date IS NULL OR e.recurring_end_date >= ($3::timestamptz AT TIME ZONE 'UTC')::date
        ELSE e.end_time >= $3::timestamptz
      END)
  AND ($4::timestamptz IS NULL OR e.start_time <= $4::timestamptz)
ORDER BY e.start_time, e.id`

const updateEvent = `UPDATE events SET
    title = $2, description = $3, location = $4, start_time = $5, end_time = $6,
    assigned_to_id = $7, event_category_id = $8,
    is_recurring = $9, recurrence_rule = $10, recurring_end_date = $11,
    updated_at = now()
WHERE id = $1
RETURNING updated_at`

const deleteEvent = `DELETE FROM events WHERE id = $1`

const deleteExpiredEvents = `DELETE FROM events
WHERE (NOT is_recurring AND end_time < now() - make_interval(days => $1))
   OR (is_recurring AND recurring_end_date IS NOT NULL
       AND recurring_end_date < (now() - make_interval(days => $1))::date)`

// CATEGORIES
const createCategory = `INSERT INTO event_categories (id, family_id, name, color)
VALUES ($1, $2, $3, $4)
RETURNING created_at`

const getCategoryByID = `SELECT id::text, family_id::text, name, color, created_at
FROM event_categories WHERE id = $1`

const listCategories = `SELECT id::text, family_id::text, name, color, created_at
FROM event_categories WHERE family_id = $1
ORDER BY name`

const updateCategory = `UPDATE event_categories SET name = $2, color = $3
WHERE id = $1`

// события категории теряют ссылку через ON DELETE SET NULL
const deleteCategory = `DELETE FROM event_categories WHERE id = $1`

// FAMILY
const upsertFamilyMember = `INSERT INTO family_members (user_id, family_id, display_name)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET family_id = EXCLUDED.family_id,
    display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), family_members.display_name),
    updated_at = now()`

const upsertFamilyLink = `INSERT INTO family_links (parent_id, child_id, family_id)
VALUES ($1, $2, $3)
ON CONFLICT (parent_id, child_id) DO UPDATE SET family_id = EXCLUDED.family_id`

const deleteFamilyLink = `DELETE FROM family_links WHERE parent_id = $1 AND child_id = $2`

const childrenOf = `SELECT child_id::text FROM family_links WHERE parent_id = $1 ORDER BY child_id`

const isParentOf = `SELECT EXISTS (SELECT 1 FROM family_links WHERE parent_id = $1 AND child_id = $2)`

const familyOf = `SELECT family_id::text FROM family_members WHERE user_id = $1`

// OUTBOX
const insertOutboxQuery = `
INSERT INTO outbox_event (
  aggregate_id, aggregate_type, event_type, payload, status, attempts, next_attempt_at, created_at
) VALUES ($1,$2,$3, ($4)::jsonb, $5, 0, now(), now())
RETURNING id
`

const reserveBatchSQL = `
WITH picked AS (
	SELECT id
  	FROM outbox_event
  	WHERE status IN ('NEW','FAILED')
		AND next_attempt_at <= now()
    	AND attempts < $3
  	ORDER BY id
  	FOR UPDATE SKIP LOCKED
	LIMIT $2
)
UPDATE outbox_event AS o
SET next_attempt_at = now() + $1::interval
FROM picked
WHERE o.id = picked.id
RETURNING o.id, o.aggregate_id, o.aggregate_type, o.event_type, o.payload, o.status, o.attempts, o.next_attempt_at, o.created_at;
`

const markFailedSQL = `
UPDATE outbox_event
SET status=$2, attempts=attempts+1, next_attempt_at=$3
WHERE id=$1`

const markGaveUpSQL = `
UPDATE outbox_event
SET status=$2, attempts=attempts+1, next_attempt_at = now()
WHERE id=$1
`

const markSentSQL = `UPDATE outbox_event SET status=$2 WHERE id=$1`

const deleteProcessedOutboxSQL = `DELETE FROM outbox_event
WHERE status IN ($2, $3) AND created_at < now() - make_interval(days => $1)`
