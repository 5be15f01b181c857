package catalog

import (
	"fmt"

	"github.com/mrlokans/librarian/internal/entities"
)

type MemberUpdate struct {
	Name  *string
	Phone *string
}

func (s *Store) RegisterMember(name, phone, email string) (*entities.Member, error) {
	name, err := cleanMemberName(name)
	if err != nil {
		return nil, err
	}
	phone, err = cleanPhone(phone)
	if err != nil {
		return nil, err
	}
	email, err = cleanEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[email]; exists {
		return nil, fmt.Errorf("member %s: %w", email, ErrDuplicateKey)
	}

	now := s.opts.Clock()
	member := &entities.Member{
		Email:         email,
		Name:          name,
		Phone:         phone,
		ActiveLoanIDs: []uint{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.members[email] = member
	s.memberIndex.onCreate(email, memberFields(member))

	out := member.Clone()
	return &out, nil
}

func (s *Store) ModifyMember(email string, upd MemberUpdate) (bool, error) {
	key := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[key]
	if !ok {
		return false, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}

	name, phone := member.Name, member.Phone
	if upd.Name != nil {
		cleaned, err := cleanMemberName(*upd.Name)
		if err != nil {
			return false, err
		}
		name = cleaned
	}
	if upd.Phone != nil {
		cleaned, err := cleanPhone(*upd.Phone)
		if err != nil {
			return false, err
		}
		phone = cleaned
	}
	if name == member.Name && phone == member.Phone {
		return false, nil
	}

	old := memberFields(member)
	member.Name, member.Phone = name, phone
	member.UpdatedAt = s.opts.Clock()
	s.memberIndex.onUpdate(key, old, memberFields(member))
	return true, nil
}

// RemoveMember deletes a member with no active loans.
func (s *Store) RemoveMember(email string) (bool, error) {
	key := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[key]
	if !ok {
		return false, fmt.Errorf("member %s: %w", email, ErrNotFound)
	}
	if n := len(member.ActiveLoanIDs); n > 0 {
		return false, fmt.Errorf("member %s holds %d active loans: %w", key, n, ErrConflict)
	}

	delete(s.members, key)
	s.memberIndex.onDelete(key, memberFields(member))
	return true, nil
}

func (s *Store) FindMember(email string) (*entities.Member, error) {
	key := NormalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	attr, _ := s.memberIndex.attribute(AttrEmail)
	for _, id := range attr.lookupExact(key) {
		if m, ok := s.members[id]; ok {
			out := m.Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("member %s: %w", email, ErrNotFound)
}

// SearchMembers finds members by email, name or phone prefix, ordered by
// email.
func (s *Store) SearchMembers(criterion, value string) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attr, ok := s.memberIndex.attribute(criterion)
	if !ok {
		return nil, invalid("criterion", "unknown member search criterion %q", criterion)
	}

	ids := attr.lookupPrefix(value)
	out := make([]entities.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (s *Store) ListMembers() []entities.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedMembers()
}
