package sqlinline

// QUpsertUser keys users by email. A picture omitted on login keeps the
// stored one.
const QUpsertUser = `--sql 62af36c7-4987-4a13-813d-7306987651df
insert into users (id, email, name, picture, provider, trip_count, created_at, last_login, updated_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, 0, now(), now(), now())
on conflict (email) do update set
    name = excluded.name,
    picture = coalesce(nullif(excluded.picture, ''), users.picture),
    provider = excluded.provider,
    last_login = now(),
    updated_at = now()
returning id::text, email, name, picture, provider, trip_count, created_at, last_login, updated_at;
`

const QSelectUserByEmail = `--sql 0db3e4ff-aaf1-4fa2-b5fd-2c6a5e934d04
select id::text, email, name, picture, provider, trip_count, created_at, last_login, updated_at
from users
where email = $1::text
limit 1;
`

const QIncrementTripCount = `--sql 70b584f9-c885-4bd0-8d72-8c305c14d74b
update users
set trip_count = trip_count + 1,
    updated_at = now()
where email = $1::text
returning trip_count;
`
