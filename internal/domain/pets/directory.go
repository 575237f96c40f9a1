package pets

import "context"

// PetName expone el nombre de una mascota.
// Se usa para evitar ciclos de imports entre módulos (pets <-> adoptions).
func (s *Service) PetName(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
