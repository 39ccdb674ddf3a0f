package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	petsdomain "github.com/Apurer/adoptionos/internal/domains/pets/domain"
)

type petList struct {
	Data     []petsdomain.Pet `json:"data"`
	Error    string           `json:"error,omitempty"`
	Fetching bool             `json:"fetching"`
}

// Get /api/pets/available
// Public listing; ?refresh=1 bypasses the cache. Fetch failures are reported in the body.
func (s *Server) listAvailable(c *gin.Context) {
	client := clientFrom(c)
	pets := client.Pets.FetchAvailable(c.Request.Context(), c.Query("refresh") == "1")
	s.respond(c, http.StatusOK, petList{Data: nonNil(pets), Error: client.Pets.Err(), Fetching: client.Pets.IsFetching()})
}

// Get /api/pets/spotlight
func (s *Server) spotlight(c *gin.Context) {
	client := clientFrom(c)
	pets := client.Pets.Spotlight(c.Request.Context())
	s.respond(c, http.StatusOK, petList{Data: nonNil(pets), Error: client.Pets.Err()})
}

// Get /api/admin/pets
// The query string, minus refresh, is the admin cache key.
func (s *Server) listAdmin(c *gin.Context) {
	client := clientFrom(c)
	query := c.Request.URL.Query()
	force := query.Get("refresh") == "1"
	query.Del("refresh")

	pets, err := client.Pets.FetchAdmin(c.Request.Context(), query.Encode(), force)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, petList{Data: nonNil(pets), Fetching: client.Pets.IsFetching()})
}

// Get /api/admin/pets/adopted
func (s *Server) listAdopted(c *gin.Context) {
	client := clientFrom(c)
	pets, err := client.Pets.FetchAdopted(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, petList{Data: nonNil(pets)})
}

// Put /api/admin/pets/:id
func (s *Server) updatePet(c *gin.Context) {
	var pet petsdomain.Pet
	if err := c.ShouldBindJSON(&pet); err != nil {
		s.fail(c, errBadBody)
		return
	}
	pet.ID = c.Param("id")
	if err := clientFrom(c).Pets.UpdatePet(c.Request.Context(), pet); err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"data": pet})
}

func nonNil(pets []petsdomain.Pet) []petsdomain.Pet {
	if pets == nil {
		return []petsdomain.Pet{}
	}
	return pets
}
