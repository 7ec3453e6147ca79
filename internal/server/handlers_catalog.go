package server

import "net/http"

// handleListUsers отдаёт сотрудников для выбора назначенного пользователя.
func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := s.users.List()
	if err != nil {
		s.logger.WithError(err).Error("failed to list users")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, _ *http.Request) {
	customers, err := s.catalog.ListCustomers()
	if err != nil {
		s.logger.WithError(err).Error("failed to list customers")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	s.writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	products, err := s.catalog.ListProducts()
	if err != nil {
		s.logger.WithError(err).Error("failed to list products")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}
