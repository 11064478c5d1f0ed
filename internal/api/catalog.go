package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"salonbook/internal/model"
	"salonbook/internal/report"
)

// crud wires the list/create/update/delete handlers of one catalog entity.
type crud[T any] struct {
	list  func(ctx context.Context) ([]T, error)
	save  func(ctx context.Context, v *T) error
	del   func(ctx context.Context, id string) error
	setID func(v *T, id string)
}

func (c crud[T]) handleList(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := c.list(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// handleSave creates when the route has no id and upserts otherwise. The
// body's id is ignored in favour of the route.
func (c crud[T]) handleSave(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(r, &v); err != nil {
			s.writeError(w, r, err)
			return
		}
		id, update := mux.Vars(r)["id"]
		c.setID(&v, id)
		if err := c.save(r.Context(), &v); err != nil {
			s.writeError(w, r, err)
			return
		}
		status := http.StatusCreated
		if update {
			status = http.StatusOK
		}
		writeJSON(w, status, v)
	}
}

func (c crud[T]) handleDelete(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.del(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) services() crud[model.Service] {
	return crud[model.Service]{
		list:  s.Catalog.ListServices,
		save:  s.Catalog.SaveService,
		del:   s.Catalog.DeleteService,
		setID: func(v *model.Service, id string) { v.ID = id },
	}
}

func (s *Server) professionals() crud[model.Professional] {
	return crud[model.Professional]{
		list:  s.Catalog.ListProfessionals,
		save:  s.Catalog.SaveProfessional,
		del:   s.Catalog.DeleteProfessional,
		setID: func(v *model.Professional, id string) { v.ID = id },
	}
}

func (s *Server) clients() crud[model.Client] {
	return crud[model.Client]{
		list:  s.Catalog.ListClients,
		save:  s.Catalog.SaveClient,
		del:   s.Catalog.DeleteClient,
		setID: func(v *model.Client, id string) { v.ID = id },
	}
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	s.services().handleList(s)(w, r)
}

func (s *Server) createService(w http.ResponseWriter, r *http.Request) {
	s.services().handleSave(s)(w, r)
}

func (s *Server) updateService(w http.ResponseWriter, r *http.Request) {
	s.services().handleSave(s)(w, r)
}

func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	s.services().handleDelete(s)(w, r)
}

func (s *Server) listProfessionals(w http.ResponseWriter, r *http.Request) {
	s.professionals().handleList(s)(w, r)
}

func (s *Server) createProfessional(w http.ResponseWriter, r *http.Request) {
	s.professionals().handleSave(s)(w, r)
}

func (s *Server) updateProfessional(w http.ResponseWriter, r *http.Request) {
	s.professionals().handleSave(s)(w, r)
}

func (s *Server) deleteProfessional(w http.ResponseWriter, r *http.Request) {
	s.professionals().handleDelete(s)(w, r)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	s.clients().handleList(s)(w, r)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	s.clients().handleSave(s)(w, r)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	s.clients().handleSave(s)(w, r)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	s.clients().handleDelete(s)(w, r)
}

type clientDetail struct {
	Client       *model.Client `json:"client"`
	Appointments []clientVisit `json:"appointments"`
}

type clientVisit struct {
	model.Appointment
	Visit int `json:"visit"`
}

// getClient handles GET /api/v1/clients/{id} with the visit history.
func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	c, history, err := s.Catalog.ClientHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	visits := make([]clientVisit, len(history))
	for i, a := range history {
		visits[i] = clientVisit{Appointment: a, Visit: report.VisitCount(history, c.ID, a.Date)}
	}
	writeJSON(w, http.StatusOK, clientDetail{Client: c, Appointments: visits})
}
