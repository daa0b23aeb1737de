package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"blogsphere/internal/models"
)

const maxJSONBody = 1 << 20

// decodeJSON читает тело запроса в dst; пустое тело допустимо, если allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return models.NewValidationError("body", "request body is too large")
		}
		return models.NewValidationError("body", "request body must be valid JSON")
	}
	return nil
}

// pathID разбирает положительный целый параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// flexID принимает id и числом, и строкой.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(n)
	return nil
}

// idParam берёт id из тела, а если там пусто, то из query-параметра.
func idParam(r *http.Request, field string, fromBody flexID) (int64, error) {
	id := int64(fromBody)
	if id == 0 {
		if raw := r.URL.Query().Get(field); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return 0, models.NewValidationError(field, fmt.Sprintf("%s must be a positive integer", field))
			}
			id = n
		}
	}
	if id <= 0 {
		return 0, models.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	return id, nil
}

// queryInt возвращает def, если параметра нет; кривое значение это ошибка валидации.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// paging читает page и limit со значениями по умолчанию.
func paging(r *http.Request, defLimit int) (int, int, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(r, "limit", defLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
