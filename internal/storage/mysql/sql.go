package mysql

// A repeated payload keeps its row and moves to the top of the history.
const upsertSearchSQL = `
INSERT INTO searches
  (id, kind, param, url, created_at)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  url        = VALUES(url),
  created_at = VALUES(created_at)
`

const getSearchSQL = `
SELECT id, kind, param, url, created_at
FROM searches
WHERE id = ?
`

// -----------------------------------------------------------------------------
// LIST QUERIES
// -----------------------------------------------------------------------------

// Newest first; (created_at, id) is the keyset and matches idx_searches_created.
const listSearchesSQL = `
SELECT id, kind, param, url, created_at
FROM searches
WHERE (? = '' OR kind = ?)
  AND (? IS NULL OR created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?
`
