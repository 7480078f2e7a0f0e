package seeds

func SeedAll() error {
	if err := SeedOrganization(); err != nil {
		return err
	}
	if err := SeedUsers(); err != nil {
		return err
	}
	if err := SeedZones(); err != nil {
		return err
	}
	return nil
}
