// Package stmt holds the SQL run against the business day calendar table.
package stmt

const CreateHolidayTable = `CREATE TABLE IF NOT EXISTS cronsim_holidays (
	day     DATE PRIMARY KEY,
	cut_off INTEGER
)`

// SelectHolidays returns every stored date. A NULL cut_off closes the whole
// day; otherwise it is the close of business in minutes after midnight.
const SelectHolidays = `SELECT day, cut_off FROM cronsim_holidays ORDER BY day`

const DeleteHolidays = `DELETE FROM cronsim_holidays`

const InsertHoliday = `INSERT INTO cronsim_holidays (day, cut_off)
VALUES ($1, $2)
ON CONFLICT (day) DO UPDATE SET cut_off = EXCLUDED.cut_off`
