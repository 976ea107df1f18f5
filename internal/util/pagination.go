package util

// Calculate turns page/size query values into an offset and limit,
// clamping nonsense input to sane defaults.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 6
	}
	from = (page - 1) * size
	return from, size
}
